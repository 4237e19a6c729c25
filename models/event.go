package models

import (
	"time"
)

type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rules       string `json:"rules"`
	Location    string `json:"location"`

	// EventDate is the calendar date; EventTime the "HH:MM" time of day,
	// stored independently of the date.
	EventDate time.Time `json:"event_date"`
	EventTime string    `json:"event_time"`

	// RegistrationDeadline is nil when registration never closes on time
	// grounds. MaxParticipants is 0 when the event is uncapped.
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MaxParticipants      int        `json:"max_participants,omitempty"`

	ImageURL  string    `json:"image_url,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartsAt combines EventDate and EventTime into a single instant,
// interpreted in UTC. A malformed EventTime falls back to midnight.
func (e *Event) StartsAt() time.Time {
	day := time.Date(e.EventDate.Year(), e.EventDate.Month(), e.EventDate.Day(), 0, 0, 0, 0, time.UTC)
	t, err := time.Parse("15:04", e.EventTime)
	if err != nil {
		return day
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}
