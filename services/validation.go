package services

import (
	"regexp"
	"strings"

	"campus-events/models"
)

var (
	// Letters and spaces only, deliberately stricter than a
	// "not all digits" rule.
	nameRegex   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRegex  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	mobileRegex = regexp.MustCompile(`^\d{10}$`)
)

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// ValidateRegistration checks every field of an already-normalized
// request and reports all failures at once, so callers can surface the
// complete list in a single response.
func ValidateRegistration(req *models.RegistrationRequest) FieldErrors {
	errs := FieldErrors{}

	if req.Name == "" {
		errs["name"] = "Full name is required"
	} else if !nameRegex.MatchString(req.Name) {
		errs["name"] = "Name can only contain alphabets and spaces"
	}

	if req.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailRegex.MatchString(req.Email) {
		errs["email"] = "Please enter a valid email address"
	}

	if req.MobileNumber == "" {
		errs["mobile_number"] = "Mobile number is required"
	} else if !mobileRegex.MatchString(req.MobileNumber) {
		errs["mobile_number"] = "Mobile number must be 10 digits"
	}

	if req.Class == "" {
		errs["class"] = "Class is required"
	}

	if req.Department == "" {
		errs["department"] = "Department is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

var eventTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidateEvent checks an event at create/edit time, including the
// deadline-precedes-event invariant that storage does not enforce.
func ValidateEvent(event *models.Event) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(event.Title) == "" {
		errs["title"] = "Title is required"
	}

	if event.EventDate.IsZero() {
		errs["event_date"] = "Event date is required"
	}

	if !eventTimeRegex.MatchString(event.EventTime) {
		errs["event_time"] = "Event time must be in HH:MM format"
	}

	if event.MaxParticipants < 0 {
		errs["max_participants"] = "Maximum participants must be a positive number"
	}

	if event.RegistrationDeadline != nil && !event.EventDate.IsZero() {
		if !event.RegistrationDeadline.Before(event.StartsAt()) {
			errs["registration_deadline"] = "Registration deadline must be before the event starts"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
