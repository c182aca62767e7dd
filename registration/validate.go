package registration

import (
	"fmt"
	"time"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

// Facts is everything the checks need, read inside the registration transaction.
type Facts struct {
	Event           entity.Event
	Attendee        entity.Attendee
	ActiveTickets   int
	IsOrganizer     bool
	HasActiveTicket bool
}

// Validate runs the eligibility checks in order and returns the first failure.
func Validate(now time.Time, f Facts) error {
	e := f.Event

	if e.IsMaxAttendee(f.ActiveTickets) {
		return fmt.Errorf("%w: %d of %d tickets issued", entity.ErrCapacityExceeded, f.ActiveTickets, e.MaxAttendee)
	}

	if !e.CanRegister(now) {
		return fmt.Errorf("%w: registration runs from %s to %s",
			entity.ErrRegistrationWindowClosed,
			e.StartRegister.Format(time.RFC3339),
			e.EndRegister.Format(time.RFC3339))
	}

	if !e.IsRegistrationStatusAllowed() {
		return entity.RegistrationNotOpenError{Status: e.StatusRegistration}
	}

	if e.Visibility == entity.VisibilityPrivate && !e.IsEmailAllowed(f.Attendee.Email) {
		return entity.ErrDomainNotAllowed
	}

	age, ok := f.Attendee.Age(now)
	if !ok {
		return fmt.Errorf("%w: birth date is not set", entity.ErrAgeRequirementUnmet)
	}
	if age < e.MinAgeRequirement {
		return fmt.Errorf("%w: minimum age is %d", entity.ErrAgeRequirementUnmet, e.MinAgeRequirement)
	}

	if f.IsOrganizer {
		return entity.ErrSelfRegistrationForbidden
	}

	if f.HasActiveTicket {
		return entity.ErrAlreadyRegistered
	}

	return nil
}
