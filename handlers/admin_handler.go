package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"campus-events/models"
	"campus-events/services"
	"campus-events/store"
)

// AdminHandler serves the organizer-facing roster and dashboard
// endpoints. Every route it backs sits behind RequireAdmin.
type AdminHandler struct {
	app      *pocketbase.PocketBase
	store    *store.PBStore
	roster   *services.RosterService
	realtime services.CountPublisher
}

func NewAdminHandler(app *pocketbase.PocketBase, pbStore *store.PBStore, roster *services.RosterService, realtime services.CountPublisher) *AdminHandler {
	return &AdminHandler{
		app:      app,
		store:    pbStore,
		roster:   roster,
		realtime: realtime,
	}
}

// Dashboard returns every event together with its registration count
// and the aggregate totals across all of them.
func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	events, err := h.store.ListEvents(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to fetch events", err)
	}

	counts, err := h.store.CountsByEvent(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to count registrations", err)
	}

	rows := make([]map[string]any, 0, len(events))
	total := 0
	for i := range events {
		event := &events[i]
		count := counts[event.ID]
		total += count
		rows = append(rows, map[string]any{
			"id":                event.ID,
			"title":             event.Title,
			"event_date":        event.EventDate.Format("2006-01-02"),
			"event_time":        event.EventTime,
			"location":          event.Location,
			"participant_count": count,
			"max_participants":  event.MaxParticipants,
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"total_events":        len(events),
		"total_registrations": total,
		"events":              rows,
	})
}

// Participants returns an event's roster, optionally narrowed by a
// case-insensitive search over name and email.
func (h *AdminHandler) Participants(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	if _, err := h.store.GetEvent(e.Request.Context(), eventID); err != nil {
		return eventFetchError(err)
	}

	roster, err := h.roster.Roster(e.Request.Context(), eventID)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to fetch participants", err)
	}

	if search := strings.ToLower(strings.TrimSpace(e.Request.URL.Query().Get("search"))); search != "" {
		filtered := roster[:0]
		for _, p := range roster {
			if participantMatches(&p, search) {
				filtered = append(filtered, p)
			}
		}
		roster = filtered
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id":     eventID,
		"total":        len(roster),
		"participants": roster,
	})
}

func participantMatches(p *models.Participant, search string) bool {
	for _, field := range []string{p.Name, p.Email, p.MobileNumber, p.Class, p.Department} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// ExportCSV streams the full roster as a CSV attachment.
func (h *AdminHandler) ExportCSV(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.store.GetEvent(e.Request.Context(), eventID)
	if err != nil {
		return eventFetchError(err)
	}

	roster, err := h.roster.Roster(e.Request.Context(), eventID)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to fetch participants", err)
	}

	filename := services.ExportFilename(event.Title, time.Now())
	e.Response.Header().Set("Content-Type", "text/csv")
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	return h.roster.WriteCSV(e.Response, roster)
}

type participantPayload struct {
	Name         string `json:"name" form:"name"`
	MobileNumber string `json:"mobile_number" form:"mobile_number"`
	Class        string `json:"class" form:"class"`
	Department   string `json:"department" form:"department"`
}

// UpdateParticipant lets an organizer correct a registration's contact
// details. The email is immutable; it anchors duplicate detection.
func (h *AdminHandler) UpdateParticipant(e *core.RequestEvent) error {
	participantID := e.Request.PathValue("participantId")

	record, err := h.app.FindRecordById("participants", participantID)
	if err != nil {
		return apis.NewNotFoundError("Participant not found", err)
	}

	var payload participantPayload
	if err := e.BindBody(&payload); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	req := models.RegistrationRequest{
		Name:         payload.Name,
		Email:        record.GetString("email"),
		MobileNumber: payload.MobileNumber,
		Class:        payload.Class,
		Department:   payload.Department,
	}
	req.Normalize()
	if fieldErrs := services.ValidateRegistration(&req); fieldErrs != nil {
		return apis.NewBadRequestError("Please fix the errors in the form", fieldErrs)
	}

	record.Set("name", req.Name)
	record.Set("mobile_number", req.MobileNumber)
	record.Set("class", req.Class)
	record.Set("department", req.Department)

	if err := h.app.Save(record); err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to update participant", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Participant updated"})
}

// DeleteParticipant removes a registration and pushes the refreshed
// count to live watchers.
func (h *AdminHandler) DeleteParticipant(e *core.RequestEvent) error {
	participantID := e.Request.PathValue("participantId")

	record, err := h.app.FindRecordById("participants", participantID)
	if err != nil {
		return apis.NewNotFoundError("Participant not found", err)
	}
	eventID := record.GetString("event_id")

	if err := h.app.Delete(record); err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to delete participant", err)
	}

	h.roster.InvalidateCount(e.Request.Context(), eventID)

	count, err := h.roster.Count(e.Request.Context(), eventID)
	if err == nil && h.realtime != nil {
		h.realtime.PublishCount(eventID, count)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":           "Participant removed",
		"participant_count": count,
	})
}
