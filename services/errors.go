package services

import (
	"errors"
	"fmt"
	"strings"

	"campus-events/models"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrCapacityReached       = errors.New("event is full")
)

// RegistrationClosedError reports every reason the gate is closed.
type RegistrationClosedError struct {
	Reasons []models.ClosureReason
}

func (e *RegistrationClosedError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return "registration closed: " + strings.Join(parts, ", ")
}

// ValidationError carries the per-field messages of a rejected payload.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// PersistenceError wraps a failed read, write or count against the
// backing store. There is no automatic retry; the cause is surfaced
// verbatim to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
