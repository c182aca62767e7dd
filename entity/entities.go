package entity

import (
	"fmt"
	"strings"
	"time"
)

type RegistrationStatus string

const (
	RegistrationOpen      RegistrationStatus = "OPEN"
	RegistrationClosed    RegistrationStatus = "CLOSED"
	RegistrationFull      RegistrationStatus = "FULL"
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
	RegistrationWaitlist  RegistrationStatus = "WAITLIST"
)

// DefaultRegistrationStatus is applied to events created without an explicit status.
const DefaultRegistrationStatus = RegistrationOpen

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationOpen, RegistrationClosed, RegistrationFull,
		RegistrationPending, RegistrationCancelled, RegistrationWaitlist:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type EventStatus string

const (
	EventUpcoming EventStatus = "Upcoming"
	EventOngoing  EventStatus = "Ongoing"
	EventFinished EventStatus = "Finished"
)

type Event struct {
	ID                  string             `db:"event_id" json:"event_id"`
	OrganizerID         string             `db:"organizer_id" json:"organizer_id"`
	Title               string             `db:"title" json:"title"`
	EventCreate         time.Time          `db:"event_create" json:"event_create"`
	StartRegister       time.Time          `db:"start_register" json:"start_register"`
	EndRegister         time.Time          `db:"end_register" json:"end_register"`
	StartEvent          time.Time          `db:"start_event" json:"start_event"`
	EndEvent            time.Time          `db:"end_event" json:"end_event"`
	MaxAttendee         int                `db:"max_attendee" json:"max_attendee"`
	StatusRegistration  RegistrationStatus `db:"status_registration" json:"status_registration"`
	Visibility          Visibility         `db:"visibility" json:"visibility"`
	AllowedEmailDomains string             `db:"allowed_email_domains" json:"allowed_email_domains"`
	MinAgeRequirement   int                `db:"min_age_requirement" json:"min_age_requirement"`
}

// AvailableSpots goes negative when MaxAttendee was lowered below the number of
// tickets already issued.
func (e Event) AvailableSpots(activeTickets int) int {
	return e.MaxAttendee - activeTickets
}

// IsMaxAttendee only reports true when the active count equals MaxAttendee exactly.
func (e Event) IsMaxAttendee(activeTickets int) bool {
	return activeTickets == e.MaxAttendee
}

func (e Event) CanRegister(now time.Time) bool {
	return !now.Before(e.StartRegister) && now.Before(e.EndRegister)
}

func (e Event) IsRegistrationStatusAllowed() bool {
	return e.StatusRegistration == RegistrationOpen
}

func (e Event) AllowedDomains() []string {
	var domains []string
	for _, d := range strings.Split(e.AllowedEmailDomains, ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

func (e Event) IsEmailAllowed(email string) bool {
	if e.Visibility != VisibilityPrivate {
		return true
	}

	domains := e.AllowedDomains()
	if len(domains) == 0 {
		return true
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if domain == "" {
		return false
	}

	for _, d := range domains {
		if d == domain {
			return true
		}
	}
	return false
}

func (e Event) Status(now time.Time) EventStatus {
	switch {
	case now.Before(e.StartEvent):
		return EventUpcoming
	case now.Before(e.EndEvent):
		return EventOngoing
	default:
		return EventFinished
	}
}

// Validate checks start_register <= end_register <= start_event <= end_event and the
// enumerated fields.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if e.EndRegister.Before(e.StartRegister) {
		return fmt.Errorf("%w: end_register is before start_register", ErrInvalidEvent)
	}
	if e.StartEvent.Before(e.EndRegister) {
		return fmt.Errorf("%w: start_event is before end_register", ErrInvalidEvent)
	}
	if e.EndEvent.Before(e.StartEvent) {
		return fmt.Errorf("%w: end_event is before start_event", ErrInvalidEvent)
	}
	if e.MaxAttendee < 0 {
		return fmt.Errorf("%w: max_attendee must not be negative", ErrInvalidEvent)
	}
	if e.MinAgeRequirement < 0 {
		return fmt.Errorf("%w: min_age_requirement must not be negative", ErrInvalidEvent)
	}
	if !e.StatusRegistration.Valid() {
		return fmt.Errorf("%w: unknown status_registration %q", ErrInvalidEvent, e.StatusRegistration)
	}
	if !e.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalidEvent, e.Visibility)
	}
	return nil
}

type Organizer struct {
	ID     string `db:"organizer_id" json:"organizer_id"`
	UserID string `db:"user_id" json:"user_id"`
	Name   string `db:"name" json:"name"`
}

type Attendee struct {
	ID        string     `db:"attendee_id" json:"attendee_id"`
	Email     string     `db:"email" json:"email"`
	Name      string     `db:"name" json:"name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
}

// Age returns full years lived at now. ok is false when no birth date is set.
func (a Attendee) Age(now time.Time) (age int, ok bool) {
	if a.BirthDate == nil {
		return 0, false
	}

	// The birth date is a calendar date; converting it to now's zone would shift the day.
	by, bm, bd := a.BirthDate.Date()
	ny, nm, nd := now.Date()

	age = ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age, true
}
