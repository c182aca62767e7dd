package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/event"
)

const MaxTicketNumberAttempts = 10

type Tx interface {
	// EventForUpdate locks the event row until the transaction ends.
	EventForUpdate(ctx context.Context, eventID string) (entity.Event, error)
	Attendee(ctx context.Context, attendeeID string) (entity.Attendee, error)
	OrganizerByUser(ctx context.Context, userID string) (entity.Organizer, bool, error)
	CountActiveTickets(ctx context.Context, eventID string) (int, error)
	HasActiveTicket(ctx context.Context, eventID, attendeeID string) (bool, error)
	TicketNumberExists(ctx context.Context, number string) (bool, error)
	// AddTicket returns entity.ErrTicketNumberTaken or entity.ErrAlreadyRegistered
	// when a unique constraint rejects the row.
	AddTicket(ctx context.Context, ticket entity.Ticket) error
	TicketForUpdate(ctx context.Context, ticketID string) (entity.Ticket, error)
	UpdateTicket(ctx context.Context, ticket entity.Ticket) error
	Publish(ctx context.Context, e event.Event) error
}

type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ticket(ctx context.Context, ticketID string) (entity.Ticket, error)
	Event(ctx context.Context, eventID string) (entity.Event, error)
}

type Service struct {
	store   Store
	clock   clockwork.Clock
	numbers entity.TicketNumberGenerator
}

func NewService(store Store, clock clockwork.Clock, numbers entity.TicketNumberGenerator) *Service {
	if numbers == nil {
		numbers = entity.NewTicketNumber
	}

	return &Service{
		store:   store,
		clock:   clock,
		numbers: numbers,
	}
}

func (s *Service) Register(ctx context.Context, eventID, attendeeID string) (entity.Ticket, error) {
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":    eventID,
		"attendee_id": attendeeID,
	})

	var ticket entity.Ticket
	err := s.store.InTx(ctx, func(tx Tx) error {
		now := s.clock.Now()

		facts, err := loadFacts(ctx, tx, eventID, attendeeID)
		if err != nil {
			return err
		}

		if err := Validate(now, facts); err != nil {
			return err
		}

		if spots := facts.Event.AvailableSpots(facts.ActiveTickets); spots < 0 {
			logger.WithField("available_spots", spots).Warn("Event is over capacity after max_attendee was lowered")
		}

		ticket, err = s.issue(ctx, tx, eventID, attendeeID, now)
		if err != nil {
			return err
		}

		if err := tx.Publish(ctx, event.NewTicketRegistered(ticket)); err != nil {
			return fmt.Errorf("publishing ticket registered: %w", err)
		}

		return nil
	})
	if err != nil {
		return entity.Ticket{}, err
	}

	logger.WithField("ticket_number", ticket.TicketNumber).Info("Ticket registered")

	return ticket, nil
}

func loadFacts(ctx context.Context, tx Tx, eventID, attendeeID string) (Facts, error) {
	e, err := tx.EventForUpdate(ctx, eventID)
	if err != nil {
		return Facts{}, fmt.Errorf("getting event: %w", err)
	}

	attendee, err := tx.Attendee(ctx, attendeeID)
	if err != nil {
		return Facts{}, fmt.Errorf("getting attendee: %w", err)
	}

	active, err := tx.CountActiveTickets(ctx, eventID)
	if err != nil {
		return Facts{}, fmt.Errorf("counting active tickets: %w", err)
	}

	organizer, found, err := tx.OrganizerByUser(ctx, attendeeID)
	if err != nil {
		return Facts{}, fmt.Errorf("getting organizer: %w", err)
	}

	registered, err := tx.HasActiveTicket(ctx, eventID, attendeeID)
	if err != nil {
		return Facts{}, fmt.Errorf("checking existing ticket: %w", err)
	}

	return Facts{
		Event:           e,
		Attendee:        attendee,
		ActiveTickets:   active,
		IsOrganizer:     found && organizer.ID == e.OrganizerID,
		HasActiveTicket: registered,
	}, nil
}

func (s *Service) issue(ctx context.Context, tx Tx, eventID, attendeeID string, now time.Time) (entity.Ticket, error) {
	for attempt := 0; attempt < MaxTicketNumberAttempts; attempt++ {
		number := s.numbers()

		exists, err := tx.TicketNumberExists(ctx, number)
		if err != nil {
			return entity.Ticket{}, fmt.Errorf("checking ticket number: %w", err)
		}
		if exists {
			continue
		}

		ticket := entity.NewTicket(uuid.NewString(), eventID, attendeeID, number, now)

		err = tx.AddTicket(ctx, ticket)
		if errors.Is(err, entity.ErrTicketNumberTaken) {
			continue
		}
		if err != nil {
			return entity.Ticket{}, fmt.Errorf("adding ticket: %w", err)
		}

		return ticket, nil
	}

	return entity.Ticket{}, entity.ErrTicketNumberExhausted
}

// Cancel cancels a ticket. An empty requesterID skips the ownership check.
func (s *Service) Cancel(ctx context.Context, ticketID, requesterID, reason string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		ticket, err = tx.TicketForUpdate(ctx, ticketID)
		if err != nil {
			return fmt.Errorf("getting ticket: %w", err)
		}

		if requesterID != "" && ticket.AttendeeID != requesterID {
			return fmt.Errorf("%w: ticket belongs to another attendee", entity.ErrForbidden)
		}

		if err := ticket.Cancel(s.clock.Now(), reason); err != nil {
			return err
		}

		if err := tx.UpdateTicket(ctx, ticket); err != nil {
			return fmt.Errorf("updating ticket: %w", err)
		}

		if err := tx.Publish(ctx, event.NewTicketCancelled(ticket)); err != nil {
			return fmt.Errorf("publishing ticket cancelled: %w", err)
		}

		return nil
	})
	if err != nil {
		return entity.Ticket{}, err
	}

	log.FromContext(ctx).WithFields(logrus.Fields{
		"ticket_id":     ticket.ID,
		"ticket_number": ticket.TicketNumber,
	}).Info("Ticket cancelled")

	return ticket, nil
}

type TicketView struct {
	entity.Ticket
	EffectiveStatus entity.TicketStatus `json:"effective_status"`
}

func (s *Service) Ticket(ctx context.Context, ticketID string) (TicketView, error) {
	ticket, err := s.store.Ticket(ctx, ticketID)
	if err != nil {
		return TicketView{}, fmt.Errorf("getting ticket: %w", err)
	}

	e, err := s.store.Event(ctx, ticket.EventID)
	if err != nil {
		return TicketView{}, fmt.Errorf("getting event: %w", err)
	}

	return TicketView{
		Ticket:          ticket,
		EffectiveStatus: ticket.EffectiveStatus(e.EndEvent, s.clock.Now()),
	}, nil
}
