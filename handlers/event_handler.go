package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"campus-events/models"
	"campus-events/services"
	"campus-events/store"
)

type EventHandler struct {
	app    *pocketbase.PocketBase
	store  *store.PBStore
	roster *services.RosterService
	grace  time.Duration
}

func NewEventHandler(app *pocketbase.PocketBase, pbStore *store.PBStore, roster *services.RosterService, grace time.Duration) *EventHandler {
	return &EventHandler{
		app:    app,
		store:  pbStore,
		roster: roster,
		grace:  grace,
	}
}

type eventPayload struct {
	Title                string `json:"title" form:"title"`
	Description          string `json:"description" form:"description"`
	Rules                string `json:"rules" form:"rules"`
	Location             string `json:"location" form:"location"`
	EventDate            string `json:"event_date" form:"event_date"`
	EventTime            string `json:"event_time" form:"event_time"`
	RegistrationDeadline string `json:"registration_deadline" form:"registration_deadline"`
	MaxParticipants      int    `json:"max_participants" form:"max_participants"`
}

// List returns every event with its participant count and the verdict
// of the eligibility gate at request time.
func (h *EventHandler) List(e *core.RequestEvent) error {
	events, err := h.store.ListEvents(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to fetch events", err)
	}

	now := time.Now()
	result := make([]map[string]any, 0, len(events))
	for i := range events {
		event := &events[i]
		count, err := h.roster.Count(e.Request.Context(), event.ID)
		if err != nil {
			return apis.NewApiError(http.StatusInternalServerError, "Failed to count participants", err)
		}
		result = append(result, h.eventResponse(event, count, now))
	}

	return e.JSON(http.StatusOK, result)
}

func (h *EventHandler) Get(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.store.GetEvent(e.Request.Context(), eventID)
	if err != nil {
		return eventFetchError(err)
	}

	count, err := h.roster.Count(e.Request.Context(), event.ID)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to count participants", err)
	}

	return e.JSON(http.StatusOK, h.eventResponse(event, count, time.Now()))
}

// Create handles admin event creation, including an optional multipart
// image upload stored by the backend's file system.
func (h *EventHandler) Create(e *core.RequestEvent) error {
	var payload eventPayload
	if err := e.BindBody(&payload); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, fieldErrs := payloadToEvent(&payload)
	if fieldErrs != nil {
		return apis.NewBadRequestError("Please fix the errors in the form", fieldErrs)
	}

	collection, err := h.app.FindCollectionByNameOrId("events")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create event", err)
	}

	record := core.NewRecord(collection)
	applyEvent(record, event)
	record.Set("created_by", e.Auth.Id)

	if files, err := e.FindUploadedFiles("image"); err == nil && len(files) > 0 {
		record.Set("image", files[0])
	}

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	return e.JSON(http.StatusCreated, h.eventResponse(h.store.EventFromRecord(record), 0, time.Now()))
}

func (h *EventHandler) Update(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	record, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	var payload eventPayload
	if err := e.BindBody(&payload); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, fieldErrs := payloadToEvent(&payload)
	if fieldErrs != nil {
		return apis.NewBadRequestError("Please fix the errors in the form", fieldErrs)
	}

	applyEvent(record, event)

	if files, err := e.FindUploadedFiles("image"); err == nil && len(files) > 0 {
		record.Set("image", files[0])
	}

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	count, _ := h.roster.Count(e.Request.Context(), record.Id)
	return e.JSON(http.StatusOK, h.eventResponse(h.store.EventFromRecord(record), count, time.Now()))
}

// Delete removes the event record. Participants are not cascaded; the
// storage layer's referential policy decides their fate.
func (h *EventHandler) Delete(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	record, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	if err := h.app.Delete(record); err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to delete event", err)
	}

	h.roster.InvalidateCount(e.Request.Context(), eventID)

	return e.JSON(http.StatusOK, map[string]any{"message": "Event deleted"})
}

func (h *EventHandler) eventResponse(event *models.Event, count int, now time.Time) map[string]any {
	verdict := services.Evaluate(services.PolicyFor(event, h.grace), count, now)

	resp := map[string]any{
		"id":                event.ID,
		"title":             event.Title,
		"description":       event.Description,
		"rules":             event.Rules,
		"location":          event.Location,
		"event_date":        event.EventDate.Format("2006-01-02"),
		"event_time":        event.EventTime,
		"participant_count": count,
		"registration_open": verdict.Open(),
		"created_by":        event.CreatedBy,
		"created_at":        event.CreatedAt,
		"updated_at":        event.UpdatedAt,
	}
	if event.RegistrationDeadline != nil {
		resp["registration_deadline"] = event.RegistrationDeadline.UTC().Format(time.RFC3339)
	}
	if event.MaxParticipants > 0 {
		resp["max_participants"] = event.MaxParticipants
	}
	if event.ImageURL != "" {
		resp["image_url"] = event.ImageURL
	}
	if !verdict.Open() {
		resp["closure_reasons"] = verdict.Reasons
	}
	return resp
}

func payloadToEvent(payload *eventPayload) (*models.Event, services.FieldErrors) {
	event := &models.Event{
		Title:           payload.Title,
		Description:     payload.Description,
		Rules:           payload.Rules,
		Location:        payload.Location,
		EventTime:       payload.EventTime,
		MaxParticipants: payload.MaxParticipants,
	}

	fieldErrs := services.FieldErrors{}

	if payload.EventDate != "" {
		date, err := time.Parse("2006-01-02", payload.EventDate)
		if err != nil {
			fieldErrs["event_date"] = "Event date must be in YYYY-MM-DD format"
		} else {
			event.EventDate = date
		}
	}

	if payload.RegistrationDeadline != "" {
		deadline, err := types.ParseDateTime(payload.RegistrationDeadline)
		if err != nil {
			fieldErrs["registration_deadline"] = "Registration deadline is not a valid timestamp"
		} else {
			t := deadline.Time()
			event.RegistrationDeadline = &t
		}
	}

	if validationErrs := services.ValidateEvent(event); validationErrs != nil {
		for field, msg := range validationErrs {
			if _, taken := fieldErrs[field]; !taken {
				fieldErrs[field] = msg
			}
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	return event, nil
}

func applyEvent(record *core.Record, event *models.Event) {
	record.Set("title", event.Title)
	record.Set("description", event.Description)
	record.Set("rules", event.Rules)
	record.Set("location", event.Location)
	record.Set("event_date", event.EventDate.Format("2006-01-02"))
	record.Set("event_time", event.EventTime)
	if event.RegistrationDeadline != nil {
		record.Set("registration_deadline", event.RegistrationDeadline.UTC().Format(time.RFC3339))
	} else {
		record.Set("registration_deadline", "")
	}
	if event.MaxParticipants > 0 {
		record.Set("max_participants", event.MaxParticipants)
	} else {
		record.Set("max_participants", nil)
	}
}

func eventFetchError(err error) error {
	if err == services.ErrEventNotFound {
		return apis.NewNotFoundError("Event not found", err)
	}
	return apis.NewApiError(http.StatusInternalServerError, "Failed to fetch event", err)
}
