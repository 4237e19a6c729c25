package models

import (
	"strings"
	"time"
)

type Participant struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	Class        string    `json:"class"`
	Department   string    `json:"department"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RegistrationRequest is the registrant-supplied payload for one
// registration attempt.
type RegistrationRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Class        string `json:"class"`
	Department   string `json:"department"`
}

// Normalize trims every field and lower-cases the email so duplicate
// detection cannot be bypassed by casing.
func (r *RegistrationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.MobileNumber = strings.TrimSpace(r.MobileNumber)
	r.Class = strings.TrimSpace(r.Class)
	r.Department = strings.TrimSpace(r.Department)
}
