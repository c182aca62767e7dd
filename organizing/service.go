package organizing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/event"
)

type Tx interface {
	EventForUpdate(ctx context.Context, eventID string) (entity.Event, error)
	UpdateEvent(ctx context.Context, e entity.Event) error
	CountActiveTickets(ctx context.Context, eventID string) (int, error)
	Publish(ctx context.Context, e event.Event) error
}

type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	AddEvent(ctx context.Context, e entity.Event) error
	Event(ctx context.Context, eventID string) (entity.Event, error)
	CountActiveTickets(ctx context.Context, eventID string) (int, error)
	AddAttendee(ctx context.Context, a entity.Attendee) error
	Attendee(ctx context.Context, attendeeID string) (entity.Attendee, error)
	AddOrganizer(ctx context.Context, o entity.Organizer) error
	OrganizerByUser(ctx context.Context, userID string) (entity.Organizer, bool, error)
}

type EventInput struct {
	Title               string                    `json:"title"`
	StartRegister       time.Time                 `json:"start_register"`
	EndRegister         time.Time                 `json:"end_register"`
	StartEvent          time.Time                 `json:"start_event"`
	EndEvent            time.Time                 `json:"end_event"`
	MaxAttendee         int                       `json:"max_attendee"`
	StatusRegistration  entity.RegistrationStatus `json:"status_registration"`
	Visibility          entity.Visibility         `json:"visibility"`
	AllowedEmailDomains string                    `json:"allowed_email_domains"`
	MinAgeRequirement   int                       `json:"min_age_requirement"`
}

func (in EventInput) validate() error {
	if in.StatusRegistration == entity.RegistrationCancelled {
		return fmt.Errorf("%w: events are cancelled through CancelEvent", entity.ErrInvalidEvent)
	}
	return nil
}

func (in EventInput) apply(e *entity.Event) {
	e.Title = strings.TrimSpace(in.Title)
	e.StartRegister = in.StartRegister
	e.EndRegister = in.EndRegister
	e.StartEvent = in.StartEvent
	e.EndEvent = in.EndEvent
	e.MaxAttendee = in.MaxAttendee
	e.AllowedEmailDomains = in.AllowedEmailDomains
	e.MinAgeRequirement = in.MinAgeRequirement

	e.StatusRegistration = in.StatusRegistration
	if e.StatusRegistration == "" {
		e.StatusRegistration = entity.DefaultRegistrationStatus
	}
	e.Visibility = in.Visibility
	if e.Visibility == "" {
		e.Visibility = entity.VisibilityPublic
	}
}

type AttendeeInput struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

type EventSummary struct {
	Event          entity.Event       `json:"event"`
	ActiveTickets  int                `json:"active_tickets"`
	AvailableSpots int                `json:"available_spots"`
	IsFull         bool               `json:"is_full"`
	Status         entity.EventStatus `json:"status"`
}

type Service struct {
	store Store
	clock clockwork.Clock
}

func NewService(store Store, clock clockwork.Clock) *Service {
	return &Service{
		store: store,
		clock: clock,
	}
}

func (s *Service) RegisterAttendee(ctx context.Context, in AttendeeInput) (entity.Attendee, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return entity.Attendee{}, fmt.Errorf("%w: a valid email is required", entity.ErrInvalidAttendee)
	}

	a := entity.Attendee{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		BirthDate: in.BirthDate,
	}
	if err := s.store.AddAttendee(ctx, a); err != nil {
		return entity.Attendee{}, fmt.Errorf("adding attendee: %w", err)
	}

	return a, nil
}

// RegisterOrganizer makes an existing attendee an organizer. Registering the same
// user again returns the organizer already on record.
func (s *Service) RegisterOrganizer(ctx context.Context, userID, name string) (entity.Organizer, error) {
	if _, err := s.store.Attendee(ctx, userID); err != nil {
		return entity.Organizer{}, fmt.Errorf("getting attendee: %w", err)
	}

	existing, found, err := s.store.OrganizerByUser(ctx, userID)
	if err != nil {
		return entity.Organizer{}, fmt.Errorf("getting organizer: %w", err)
	}
	if found {
		return existing, nil
	}

	o := entity.Organizer{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   strings.TrimSpace(name),
	}
	if err := s.store.AddOrganizer(ctx, o); err != nil {
		return entity.Organizer{}, fmt.Errorf("adding organizer: %w", err)
	}

	return o, nil
}

func (s *Service) organizer(ctx context.Context, userID string) (entity.Organizer, error) {
	o, found, err := s.store.OrganizerByUser(ctx, userID)
	if err != nil {
		return entity.Organizer{}, fmt.Errorf("getting organizer: %w", err)
	}
	if !found {
		return entity.Organizer{}, entity.ErrNotOrganizer
	}
	return o, nil
}

func (s *Service) CreateEvent(ctx context.Context, userID string, in EventInput) (entity.Event, error) {
	if err := in.validate(); err != nil {
		return entity.Event{}, err
	}

	o, err := s.organizer(ctx, userID)
	if err != nil {
		return entity.Event{}, err
	}

	e := entity.Event{
		ID:          uuid.NewString(),
		OrganizerID: o.ID,
		EventCreate: s.clock.Now(),
	}
	in.apply(&e)

	if err := e.Validate(); err != nil {
		return entity.Event{}, err
	}

	if err := s.store.AddEvent(ctx, e); err != nil {
		return entity.Event{}, fmt.Errorf("adding event: %w", err)
	}

	log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":     e.ID,
		"organizer_id": o.ID,
	}).Info("Event created")

	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, userID, eventID string, in EventInput) (entity.Event, error) {
	if err := in.validate(); err != nil {
		return entity.Event{}, err
	}

	o, err := s.organizer(ctx, userID)
	if err != nil {
		return entity.Event{}, err
	}

	logger := log.FromContext(ctx).WithField("event_id", eventID)

	var e entity.Event
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		e, err = tx.EventForUpdate(ctx, eventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		if e.OrganizerID != o.ID {
			return fmt.Errorf("%w: event belongs to another organizer", entity.ErrForbidden)
		}
		if e.StatusRegistration == entity.RegistrationCancelled {
			return fmt.Errorf("%w: event is cancelled", entity.ErrInvalidEvent)
		}

		in.apply(&e)
		if err := e.Validate(); err != nil {
			return err
		}

		active, err := tx.CountActiveTickets(ctx, eventID)
		if err != nil {
			return fmt.Errorf("counting active tickets: %w", err)
		}
		if spots := e.AvailableSpots(active); spots < 0 {
			logger.WithFields(logrus.Fields{
				"max_attendee":   e.MaxAttendee,
				"active_tickets": active,
			}).Warn("max_attendee lowered below the number of active tickets")
		}

		return tx.UpdateEvent(ctx, e)
	})
	if err != nil {
		return entity.Event{}, err
	}

	logger.Info("Event updated")

	return e, nil
}

// CancelEvent closes registration for good. Ticket holders are told asynchronously.
func (s *Service) CancelEvent(ctx context.Context, userID, eventID string) (entity.Event, error) {
	o, err := s.organizer(ctx, userID)
	if err != nil {
		return entity.Event{}, err
	}

	var e entity.Event
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		e, err = tx.EventForUpdate(ctx, eventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		if e.OrganizerID != o.ID {
			return fmt.Errorf("%w: event belongs to another organizer", entity.ErrForbidden)
		}
		if e.StatusRegistration == entity.RegistrationCancelled {
			return fmt.Errorf("%w: event is already cancelled", entity.ErrAlreadyCancelled)
		}

		e.StatusRegistration = entity.RegistrationCancelled
		if err := tx.UpdateEvent(ctx, e); err != nil {
			return err
		}

		if err := tx.Publish(ctx, event.NewEventCancelled(e, s.clock.Now())); err != nil {
			return fmt.Errorf("publishing event cancelled: %w", err)
		}

		return nil
	})
	if err != nil {
		return entity.Event{}, err
	}

	log.FromContext(ctx).WithField("event_id", e.ID).Info("Event cancelled")

	return e, nil
}

func (s *Service) EventSummary(ctx context.Context, eventID string) (EventSummary, error) {
	e, err := s.store.Event(ctx, eventID)
	if err != nil {
		return EventSummary{}, fmt.Errorf("getting event: %w", err)
	}

	active, err := s.store.CountActiveTickets(ctx, eventID)
	if err != nil {
		return EventSummary{}, fmt.Errorf("counting active tickets: %w", err)
	}

	return EventSummary{
		Event:          e,
		ActiveTickets:  active,
		AvailableSpots: e.AvailableSpots(active),
		IsFull:         e.IsMaxAttendee(active),
		Status:         e.Status(s.clock.Now()),
	}, nil
}
