package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"campus-events/models"
	"campus-events/services"
)

// PBStore exposes the events/participants collections through the
// narrow contract the services consume: get, list, count, conditional
// insert. PocketBase owns everything below it: schema, files, access
// rules, realtime on the collection API.
type PBStore struct {
	app core.App
}

func New(app core.App) *PBStore {
	return &PBStore{app: app}
}

func (s *PBStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	record, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event %s: %w", eventID, err)
	}
	return s.EventFromRecord(record), nil
}

func (s *PBStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	records, err := s.app.FindRecordsByFilter(
		"events",
		"id != ''",
		"-event_date",
		-1,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]models.Event, 0, len(records))
	for _, record := range records {
		events = append(events, *s.EventFromRecord(record))
	}
	return events, nil
}

func (s *PBStore) CountParticipants(ctx context.Context, eventID string) (int, error) {
	total, err := s.app.CountRecords("participants", dbx.HashExp{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("count participants for event %s: %w", eventID, err)
	}
	return int(total), nil
}

// CountsByEvent returns participant totals grouped by event in one
// query; it backs the admin dashboard and the metrics refresher.
func (s *PBStore) CountsByEvent(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		EventID string `db:"event_id"`
		Total   int    `db:"total"`
	}{}

	err := s.app.DB().
		Select("event_id", "COUNT(*) AS total").
		From("participants").
		GroupBy("event_id").
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("count participants by event: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.EventID] = row.Total
	}
	return counts, nil
}

func (s *PBStore) FindParticipantByEmail(ctx context.Context, eventID, email string) (*models.Participant, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"participants",
		"event_id = {:eventId} && email = {:email}",
		dbx.Params{"eventId": eventID, "email": email},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find participant by email: %w", err)
	}
	return participantFromRecord(record), nil
}

func (s *PBStore) ListParticipants(ctx context.Context, eventID string) ([]models.Participant, error) {
	records, err := s.app.FindRecordsByFilter(
		"participants",
		"event_id = {:eventId}",
		"-registered_at",
		-1,
		0,
		dbx.Params{"eventId": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("list participants for event %s: %w", eventID, err)
	}

	roster := make([]models.Participant, 0, len(records))
	for _, record := range records {
		roster = append(roster, *participantFromRecord(record))
	}
	return roster, nil
}

// CreateParticipant inserts the registration atomically: the capacity
// and duplicate checks re-run inside the same transaction as the write,
// so two concurrent attempts cannot both slip past a stale pre-check.
// The unique (event_id, email) index backs the duplicate check at the
// storage layer as well.
func (s *PBStore) CreateParticipant(ctx context.Context, event *models.Event, p *models.Participant) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		if event.MaxParticipants > 0 {
			total, err := txApp.CountRecords("participants", dbx.HashExp{"event_id": event.ID})
			if err != nil {
				return fmt.Errorf("recount participants: %w", err)
			}
			if int(total) >= event.MaxParticipants {
				return services.ErrCapacityReached
			}
		}

		_, err := txApp.FindFirstRecordByFilter(
			"participants",
			"event_id = {:eventId} && email = {:email}",
			dbx.Params{"eventId": event.ID, "email": p.Email},
		)
		if err == nil {
			return services.ErrDuplicateRegistration
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("recheck duplicate: %w", err)
		}

		collection, err := txApp.FindCollectionByNameOrId("participants")
		if err != nil {
			return fmt.Errorf("find participants collection: %w", err)
		}

		record := core.NewRecord(collection)
		record.Set("event_id", p.EventID)
		record.Set("name", p.Name)
		record.Set("email", p.Email)
		record.Set("mobile_number", p.MobileNumber)
		record.Set("class", p.Class)
		record.Set("department", p.Department)

		if err := txApp.Save(record); err != nil {
			if isUniqueViolation(err) {
				return services.ErrDuplicateRegistration
			}
			return fmt.Errorf("insert participant: %w", err)
		}

		p.ID = record.Id
		p.RegisteredAt = record.GetDateTime("registered_at").Time()
		return nil
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// EventFromRecord maps a raw events record into the domain model,
// resolving the stored image file into a servable URL.
func (s *PBStore) EventFromRecord(record *core.Record) *models.Event {
	event := &models.Event{
		ID:              record.Id,
		Title:           record.GetString("title"),
		Description:     record.GetString("description"),
		Rules:           record.GetString("rules"),
		Location:        record.GetString("location"),
		EventDate:       record.GetDateTime("event_date").Time(),
		EventTime:       record.GetString("event_time"),
		MaxParticipants: record.GetInt("max_participants"),
		CreatedBy:       record.GetString("created_by"),
		CreatedAt:       record.GetDateTime("created").Time(),
		UpdatedAt:       record.GetDateTime("updated").Time(),
	}

	if deadline := record.GetDateTime("registration_deadline"); !deadline.IsZero() {
		t := deadline.Time()
		event.RegistrationDeadline = &t
	}

	if image := record.GetString("image"); image != "" {
		event.ImageURL = "/api/files/" + record.BaseFilesPath() + "/" + image
	}

	return event
}

func participantFromRecord(record *core.Record) *models.Participant {
	return &models.Participant{
		ID:           record.Id,
		EventID:      record.GetString("event_id"),
		Name:         record.GetString("name"),
		Email:        record.GetString("email"),
		MobileNumber: record.GetString("mobile_number"),
		Class:        record.GetString("class"),
		Department:   record.GetString("department"),
		RegisteredAt: record.GetDateTime("registered_at").Time(),
	}
}
