package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"campus-events/models"
)

// RosterStore is the slice of the persistence contract the aggregator
// consumes.
type RosterStore interface {
	CountParticipants(ctx context.Context, eventID string) (int, error)
	FindParticipantByEmail(ctx context.Context, eventID, email string) (*models.Participant, error)
	ListParticipants(ctx context.Context, eventID string) ([]models.Participant, error)
}

// RosterService derives participant counts and duplicate lookups for an
// event. Counts are cached in Redis with a short TTL so list views don't
// hammer the store. The cache is advisory only; the registration write
// path recounts inside its own transaction and never trusts it.
type RosterService struct {
	store RosterStore
	Redis *redis.Client
	ttl   time.Duration
}

func NewRosterService(store RosterStore, redisClient *redis.Client, ttl time.Duration) *RosterService {
	return &RosterService{
		store: store,
		Redis: redisClient,
		ttl:   ttl,
	}
}

func countKey(eventID string) string {
	return fmt.Sprintf("event:count:%s", eventID)
}

// Count returns the participant count for the event, preferring the
// cached value. Cache failures fall through to the store.
func (s *RosterService) Count(ctx context.Context, eventID string) (int, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, countKey(eventID)).Result(); err == nil {
			if n, err := strconv.Atoi(cached); err == nil {
				return n, nil
			}
		}
	}

	count, err := s.store.CountParticipants(ctx, eventID)
	if err != nil {
		return 0, &PersistenceError{Op: "count participants", Err: err}
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, countKey(eventID), count, s.ttl).Err(); err != nil {
			log.Printf("Error caching count for event %s: %v", eventID, err)
		}
	}

	return count, nil
}

// InvalidateCount drops the cached count after any participant write.
func (s *RosterService) InvalidateCount(ctx context.Context, eventID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, countKey(eventID)).Err(); err != nil {
		log.Printf("Error invalidating count cache for event %s: %v", eventID, err)
	}
}

// FindByEmail looks up an existing registration by normalized email.
// Absence is reported as a nil participant, not an error.
func (s *RosterService) FindByEmail(ctx context.Context, eventID, email string) (*models.Participant, error) {
	p, err := s.store.FindParticipantByEmail(ctx, eventID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, &PersistenceError{Op: "find participant", Err: err}
	}
	return p, nil
}

// Roster returns the full participant list for the event, newest first.
func (s *RosterService) Roster(ctx context.Context, eventID string) ([]models.Participant, error) {
	roster, err := s.store.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, &PersistenceError{Op: "list participants", Err: err}
	}
	return roster, nil
}

// WriteCSV renders the roster in the export format the admin dashboard
// downloads: one header row, then one row per participant.
func (s *RosterService) WriteCSV(w io.Writer, roster []models.Participant) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Name", "Email", "Mobile Number", "Class", "Department", "Registration Date"}); err != nil {
		return err
	}

	for _, p := range roster {
		regDate := "N/A"
		if !p.RegisteredAt.IsZero() {
			regDate = p.RegisteredAt.Format("2006-01-02")
		}
		if err := cw.Write([]string{p.Name, p.Email, p.MobileNumber, p.Class, p.Department, regDate}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename builds the download name for an event's roster export.
func ExportFilename(eventTitle string, now time.Time) string {
	name := strings.Join(strings.Fields(eventTitle), "_")
	if name == "" {
		name = "event"
	}
	return fmt.Sprintf("%s_participants_%s.csv", name, now.Format("2006-01-02"))
}
