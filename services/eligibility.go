package services

import (
	"time"

	"campus-events/models"
)

// Policy is the slice of an event's configuration the eligibility gate
// cares about. GracePeriod extends the nominal deadline; it comes from
// configuration and defaults to zero.
type Policy struct {
	RegistrationDeadline *time.Time
	MaxParticipants      int
	GracePeriod          time.Duration
}

// Evaluate decides whether registration is open given the policy, the
// current participant count and an injected clock. It is a pure function
// and never fails: with no deadline and no cap the verdict is always
// open. Both closure reasons are reported when both apply.
func Evaluate(p Policy, participantCount int, now time.Time) models.Verdict {
	var v models.Verdict

	if p.RegistrationDeadline != nil {
		effective := p.RegistrationDeadline.Add(p.GracePeriod)
		if !now.Before(effective) {
			v.Reasons = append(v.Reasons, models.ReasonDeadlinePassed)
		}
	}

	if p.MaxParticipants > 0 && participantCount >= p.MaxParticipants {
		v.Reasons = append(v.Reasons, models.ReasonCapacityReached)
	}

	return v
}

// PolicyFor extracts the eligibility policy from an event.
func PolicyFor(event *models.Event, grace time.Duration) Policy {
	return Policy{
		RegistrationDeadline: event.RegistrationDeadline,
		MaxParticipants:      event.MaxParticipants,
		GracePeriod:          grace,
	}
}
