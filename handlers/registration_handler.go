package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"campus-events/models"
	"campus-events/services"
)

type RegistrationHandler struct {
	registration *services.RegistrationService
}

func NewRegistrationHandler(registration *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// Register submits a registration for the authenticated user. The
// submitted email is overridden with the account email so a user can
// only ever register themselves.
func (h *RegistrationHandler) Register(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Please sign in to register", nil)
	}

	eventID := e.Request.PathValue("eventId")

	var req models.RegistrationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	req.Email = e.Auth.Email()

	result, err := h.registration.Register(e.Request.Context(), eventID, &req, time.Now())
	if err != nil {
		return registrationError(err)
	}

	resp := map[string]any{
		"message":           "Registration confirmed",
		"participant_id":    result.Participant.ID,
		"participant_count": result.Count,
		"capacity_filled":   result.CapacityFilled,
		"notification_sent": result.NotificationSent,
	}
	if !result.NotificationSent {
		resp["warning"] = "Your spot is confirmed, but the confirmation email could not be sent"
	}

	return e.JSON(http.StatusCreated, resp)
}

// Status reports whether the authenticated user could register right
// now, and why not if the window is closed.
func (h *RegistrationHandler) Status(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Please sign in", nil)
	}

	eventID := e.Request.PathValue("eventId")

	status, err := h.registration.CheckEligibility(e.Request.Context(), eventID, e.Auth.Email(), time.Now())
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return apis.NewNotFoundError("Event not found", err)
		}
		return apis.NewApiError(http.StatusInternalServerError, "Failed to check registration status", err)
	}

	resp := map[string]any{
		"registration_open":  status.Open,
		"participant_count":  status.ParticipantCount,
		"already_registered": status.AlreadyRegistered,
	}
	if status.MaxParticipants > 0 {
		resp["max_participants"] = status.MaxParticipants
	}
	if !status.Open {
		resp["closure_reasons"] = status.Verdict.Reasons
	}

	return e.JSON(http.StatusOK, resp)
}

func registrationError(err error) error {
	var validationErr *services.ValidationError
	var closedErr *services.RegistrationClosedError
	var persistenceErr *services.PersistenceError

	switch {
	case errors.Is(err, services.ErrEventNotFound):
		return apis.NewNotFoundError("Event not found", err)
	case errors.As(err, &validationErr):
		return apis.NewBadRequestError("Please fix the errors in the form", validationErr.Fields)
	case errors.As(err, &closedErr):
		return apis.NewApiError(http.StatusConflict, "Registration is closed for this event", map[string]any{
			"closure_reasons": closedErr.Reasons,
		})
	case errors.Is(err, services.ErrDuplicateRegistration):
		return apis.NewApiError(http.StatusConflict, "You are already registered for this event", nil)
	case errors.As(err, &persistenceErr):
		return apis.NewApiError(http.StatusInternalServerError, "Failed to save registration", err)
	default:
		return apis.NewApiError(http.StatusInternalServerError, "Registration failed", err)
	}
}
