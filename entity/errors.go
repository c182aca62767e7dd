package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCapacityExceeded          = errors.New("event is full")
	ErrRegistrationWindowClosed  = errors.New("registration window is closed")
	ErrRegistrationNotOpen       = errors.New("registration is not open")
	ErrDomainNotAllowed          = errors.New("email domain is not allowed for this event")
	ErrAgeRequirementUnmet       = errors.New("age requirement is not met")
	ErrSelfRegistrationForbidden = errors.New("organizers cannot register for their own event")
	ErrAlreadyRegistered         = errors.New("already registered for this event")
	ErrAlreadyCancelled          = errors.New("ticket is already cancelled")
	ErrNotFound                  = errors.New("not found")

	ErrForbidden             = errors.New("forbidden")
	ErrNotOrganizer          = errors.New("user is not an organizer")
	ErrInvalidEvent          = errors.New("invalid event")
	ErrTicketNumberTaken     = errors.New("ticket number is already taken")
	ErrTicketNumberExhausted = errors.New("could not generate a unique ticket number")
	ErrReminderNotDue        = errors.New("ticket is not due a reminder")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidAttendee       = errors.New("invalid attendee")
)

// RegistrationNotOpenError carries the event's registration status. It matches
// ErrRegistrationNotOpen with errors.Is.
type RegistrationNotOpenError struct {
	Status RegistrationStatus
}

func (e RegistrationNotOpenError) Error() string {
	return fmt.Sprintf("%s: registration is %s", ErrRegistrationNotOpen, strings.ToLower(string(e.Status)))
}

func (e RegistrationNotOpenError) Unwrap() error {
	return ErrRegistrationNotOpen
}
