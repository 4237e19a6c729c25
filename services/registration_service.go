package services

import (
	"context"
	"errors"
	"log"
	"time"

	"campus-events/models"
	"campus-events/monitoring"
)

// RegistrationStore is the persistence contract the coordinator drives.
// CreateParticipant must re-check capacity and (event, email) uniqueness
// and insert in one atomic step, returning ErrCapacityReached or
// ErrDuplicateRegistration when a concurrent attempt won the race.
type RegistrationStore interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	CountParticipants(ctx context.Context, eventID string) (int, error)
	FindParticipantByEmail(ctx context.Context, eventID, email string) (*models.Participant, error)
	CreateParticipant(ctx context.Context, event *models.Event, p *models.Participant) error
}

// Notifier dispatches the confirmation message for a stored
// registration. It is best-effort: a failure is reported to the caller
// but never reverses the registration.
type Notifier interface {
	SendConfirmation(ctx context.Context, event *models.Event, p *models.Participant) error
}

// CountPublisher pushes participants-changed notifications to the
// event's realtime channel. The payload is advisory; subscribers are
// expected to re-fetch rather than trust the pushed count.
type CountPublisher interface {
	PublishCount(eventID string, count int)
}

// RegistrationResult reports one accepted registration.
type RegistrationResult struct {
	Participant      *models.Participant `json:"participant"`
	Count            int                 `json:"participant_count"`
	CapacityFilled   bool                `json:"capacity_filled"`
	NotificationSent bool                `json:"notification_sent"`
}

// EligibilityStatus is the read-only view of the gate for one caller.
type EligibilityStatus struct {
	Verdict           models.Verdict `json:"verdict"`
	Open              bool           `json:"open"`
	ParticipantCount  int            `json:"participant_count"`
	MaxParticipants   int            `json:"max_participants,omitempty"`
	AlreadyRegistered bool           `json:"already_registered"`
}

// RegistrationService coordinates one registration attempt end to end:
// eligibility gate, payload validation, duplicate pre-check, atomic
// insert, realtime publish and best-effort confirmation.
type RegistrationService struct {
	store    RegistrationStore
	roster   *RosterService
	notifier Notifier
	realtime CountPublisher
	monitor  *monitoring.Monitor
	grace    time.Duration
}

func NewRegistrationService(
	store RegistrationStore,
	roster *RosterService,
	notifier Notifier,
	realtime CountPublisher,
	monitor *monitoring.Monitor,
	grace time.Duration,
) *RegistrationService {
	return &RegistrationService{
		store:    store,
		roster:   roster,
		notifier: notifier,
		realtime: realtime,
		monitor:  monitor,
		grace:    grace,
	}
}

func (s *RegistrationService) Register(ctx context.Context, eventID string, req *models.RegistrationRequest, now time.Time) (*RegistrationResult, error) {
	started := time.Now()

	result, err := s.register(ctx, eventID, req, now)
	s.trackOutcome(eventID, started, err)
	return result, err
}

func (s *RegistrationService) register(ctx context.Context, eventID string, req *models.RegistrationRequest, now time.Time) (*RegistrationResult, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	count, err := s.roster.Count(ctx, eventID)
	if err != nil {
		return nil, err
	}

	verdict := Evaluate(PolicyFor(event, s.grace), count, now)
	if !verdict.Open() {
		return nil, &RegistrationClosedError{Reasons: verdict.Reasons}
	}

	req.Normalize()
	if fieldErrs := ValidateRegistration(req); fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	existing, err := s.roster.FindByEmail(ctx, eventID, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRegistration
	}

	participant := &models.Participant{
		EventID:      eventID,
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Class:        req.Class,
		Department:   req.Department,
	}

	// The insert re-validates capacity and uniqueness atomically; losing
	// either race here is reported the same way as failing the pre-check.
	if err := s.store.CreateParticipant(ctx, event, participant); err != nil {
		switch {
		case errors.Is(err, ErrCapacityReached):
			return nil, &RegistrationClosedError{Reasons: []models.ClosureReason{models.ReasonCapacityReached}}
		case errors.Is(err, ErrDuplicateRegistration):
			return nil, ErrDuplicateRegistration
		default:
			return nil, &PersistenceError{Op: "create participant", Err: err}
		}
	}

	s.roster.InvalidateCount(ctx, eventID)

	newCount, err := s.roster.Count(ctx, eventID)
	if err != nil {
		// The registration already stands; fall back to the pre-insert
		// count rather than failing the accepted attempt.
		log.Printf("Error recounting participants for event %s: %v", eventID, err)
		newCount = count + 1
	}

	if s.realtime != nil {
		s.realtime.PublishCount(eventID, newCount)
	}
	if s.monitor != nil {
		s.monitor.SetParticipantCount(eventID, newCount)
	}

	result := &RegistrationResult{
		Participant:    participant,
		Count:          newCount,
		CapacityFilled: event.MaxParticipants > 0 && newCount >= event.MaxParticipants,
	}

	if s.notifier != nil {
		if err := s.notifier.SendConfirmation(ctx, event, participant); err != nil {
			log.Printf("Error sending confirmation for participant %s: %v", participant.ID, err)
			if s.monitor != nil {
				s.monitor.TrackNotificationFailure()
			}
		} else {
			result.NotificationSent = true
		}
	}

	return result, nil
}

// CheckEligibility re-runs the gate against freshly fetched state. It
// backs the status endpoint and the client-side refresh triggered by
// realtime pushes.
func (s *RegistrationService) CheckEligibility(ctx context.Context, eventID, email string, now time.Time) (*EligibilityStatus, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	count, err := s.roster.Count(ctx, eventID)
	if err != nil {
		return nil, err
	}

	verdict := Evaluate(PolicyFor(event, s.grace), count, now)

	status := &EligibilityStatus{
		Verdict:          verdict,
		Open:             verdict.Open(),
		ParticipantCount: count,
		MaxParticipants:  event.MaxParticipants,
	}

	if email != "" {
		existing, err := s.roster.FindByEmail(ctx, eventID, email)
		if err != nil {
			return nil, err
		}
		status.AlreadyRegistered = existing != nil
	}

	return status, nil
}

func (s *RegistrationService) trackOutcome(eventID string, started time.Time, err error) {
	if s.monitor == nil {
		return
	}

	outcome := "success"
	var closed *RegistrationClosedError
	var invalid *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &closed):
		outcome = "closed"
	case errors.As(err, &invalid):
		outcome = "invalid"
	case errors.Is(err, ErrDuplicateRegistration):
		outcome = "duplicate"
	case errors.Is(err, ErrEventNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}

	s.monitor.TrackRegistration(eventID, outcome, time.Since(started))
}
