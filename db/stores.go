package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/event"
	"github.com/Mamajin/Event-Reservation-sub000/message"
	"github.com/Mamajin/Event-Reservation-sub000/organizing"
	"github.com/Mamajin/Event-Reservation-sub000/registration"
)

func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// Releases the row locks if fn panics. Once committed or rolled back this
		// returns sql.ErrTxDone.
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// txRepo runs repository queries inside one transaction. Published events go to
// the outbox table in the same transaction.
type txRepo struct {
	tx     *sqlx.Tx
	logger watermill.LoggerAdapter
}

func (r txRepo) EventForUpdate(ctx context.Context, eventID string) (entity.Event, error) {
	return getEvent(ctx, r.tx, eventID, true)
}

func (r txRepo) UpdateEvent(ctx context.Context, e entity.Event) error {
	return updateEvent(ctx, r.tx, e)
}

func (r txRepo) Attendee(ctx context.Context, attendeeID string) (entity.Attendee, error) {
	return getAttendee(ctx, r.tx, attendeeID)
}

func (r txRepo) OrganizerByUser(ctx context.Context, userID string) (entity.Organizer, bool, error) {
	return findOrganizerByUser(ctx, r.tx, userID)
}

func (r txRepo) CountActiveTickets(ctx context.Context, eventID string) (int, error) {
	return countActiveTickets(ctx, r.tx, eventID)
}

func (r txRepo) HasActiveTicket(ctx context.Context, eventID, attendeeID string) (bool, error) {
	return hasActiveTicket(ctx, r.tx, eventID, attendeeID)
}

func (r txRepo) TicketNumberExists(ctx context.Context, number string) (bool, error) {
	return ticketNumberExists(ctx, r.tx, number)
}

func (r txRepo) AddTicket(ctx context.Context, ticket entity.Ticket) error {
	return addTicket(ctx, r.tx, ticket)
}

func (r txRepo) TicketForUpdate(ctx context.Context, ticketID string) (entity.Ticket, error) {
	return getTicket(ctx, r.tx, ticketID, true)
}

func (r txRepo) UpdateTicket(ctx context.Context, ticket entity.Ticket) error {
	return updateTicketStatus(ctx, r.tx, ticket)
}

func (r txRepo) Publish(ctx context.Context, e event.Event) error {
	return message.PublishInTx(ctx, r.tx.Tx, e, r.logger)
}

type RegistrationStore struct {
	db      *sqlx.DB
	logger  watermill.LoggerAdapter
	events  EventRepo
	tickets TicketRepo
}

func NewRegistrationStore(db *sqlx.DB, logger watermill.LoggerAdapter) RegistrationStore {
	return RegistrationStore{
		db:      db,
		logger:  logger,
		events:  NewEventRepo(db),
		tickets: NewTicketRepo(db),
	}
}

func (s RegistrationStore) InTx(ctx context.Context, fn func(tx registration.Tx) error) error {
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(txRepo{tx: tx, logger: s.logger})
	})
}

func (s RegistrationStore) Ticket(ctx context.Context, ticketID string) (entity.Ticket, error) {
	return s.tickets.Get(ctx, ticketID)
}

func (s RegistrationStore) Event(ctx context.Context, eventID string) (entity.Event, error) {
	return s.events.Get(ctx, eventID)
}

type OrganizingStore struct {
	db         *sqlx.DB
	logger     watermill.LoggerAdapter
	attendees  AttendeeRepo
	events     EventRepo
	organizers OrganizerRepo
	tickets    TicketRepo
}

func NewOrganizingStore(db *sqlx.DB, logger watermill.LoggerAdapter) OrganizingStore {
	return OrganizingStore{
		db:         db,
		logger:     logger,
		attendees:  NewAttendeeRepo(db),
		events:     NewEventRepo(db),
		organizers: NewOrganizerRepo(db),
		tickets:    NewTicketRepo(db),
	}
}

func (s OrganizingStore) InTx(ctx context.Context, fn func(tx organizing.Tx) error) error {
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(txRepo{tx: tx, logger: s.logger})
	})
}

func (s OrganizingStore) AddEvent(ctx context.Context, e entity.Event) error {
	return s.events.Add(ctx, e)
}

func (s OrganizingStore) Event(ctx context.Context, eventID string) (entity.Event, error) {
	return s.events.Get(ctx, eventID)
}

func (s OrganizingStore) CountActiveTickets(ctx context.Context, eventID string) (int, error) {
	return s.tickets.CountActive(ctx, eventID)
}

func (s OrganizingStore) AddAttendee(ctx context.Context, a entity.Attendee) error {
	return s.attendees.Add(ctx, a)
}

func (s OrganizingStore) Attendee(ctx context.Context, attendeeID string) (entity.Attendee, error) {
	return s.attendees.Get(ctx, attendeeID)
}

func (s OrganizingStore) AddOrganizer(ctx context.Context, o entity.Organizer) error {
	return s.organizers.Add(ctx, o)
}

func (s OrganizingStore) OrganizerByUser(ctx context.Context, userID string) (entity.Organizer, bool, error) {
	return s.organizers.FindByUser(ctx, userID)
}
