package registration_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/event"
	"github.com/Mamajin/Event-Reservation-sub000/registration"
)

// MockStore keeps everything in memory. InTx holds the lock for the whole
// transaction and only keeps ticket changes when fn succeeds.
type MockStore struct {
	lock       sync.Mutex
	Events     map[string]entity.Event
	Attendees  map[string]entity.Attendee
	Organizers map[string]entity.Organizer
	Tickets    map[string]entity.Ticket
	Published  []event.Event

	// AddTicketErrors are returned by AddTicket, one per call, before it stores anything.
	AddTicketErrors []error
}

func NewMockStore() *MockStore {
	return &MockStore{
		Events:     make(map[string]entity.Event),
		Attendees:  make(map[string]entity.Attendee),
		Organizers: make(map[string]entity.Organizer),
		Tickets:    make(map[string]entity.Ticket),
	}
}

func (s *MockStore) InTx(_ context.Context, fn func(tx registration.Tx) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	tx := &mockTx{store: s, tickets: make(map[string]entity.Ticket, len(s.Tickets))}
	for id, t := range s.Tickets {
		tx.tickets[id] = t
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.Tickets = tx.tickets
	s.Published = append(s.Published, tx.published...)
	return nil
}

func (s *MockStore) Ticket(_ context.Context, ticketID string) (entity.Ticket, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	t, ok := s.Tickets[ticketID]
	if !ok {
		return entity.Ticket{}, entity.ErrNotFound
	}
	return t, nil
}

func (s *MockStore) Event(_ context.Context, eventID string) (entity.Event, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.Events[eventID]
	if !ok {
		return entity.Event{}, entity.ErrNotFound
	}
	return e, nil
}

func (s *MockStore) ActiveTickets(eventID string) []entity.Ticket {
	s.lock.Lock()
	defer s.lock.Unlock()

	var active []entity.Ticket
	for _, t := range s.Tickets {
		if t.EventID == eventID && t.Status == entity.TicketActive {
			active = append(active, t)
		}
	}
	return active
}

type mockTx struct {
	store     *MockStore
	tickets   map[string]entity.Ticket
	published []event.Event
}

func (tx *mockTx) EventForUpdate(_ context.Context, eventID string) (entity.Event, error) {
	e, ok := tx.store.Events[eventID]
	if !ok {
		return entity.Event{}, entity.ErrNotFound
	}
	return e, nil
}

func (tx *mockTx) Attendee(_ context.Context, attendeeID string) (entity.Attendee, error) {
	a, ok := tx.store.Attendees[attendeeID]
	if !ok {
		return entity.Attendee{}, entity.ErrNotFound
	}
	return a, nil
}

func (tx *mockTx) OrganizerByUser(_ context.Context, userID string) (entity.Organizer, bool, error) {
	o, ok := tx.store.Organizers[userID]
	return o, ok, nil
}

func (tx *mockTx) CountActiveTickets(_ context.Context, eventID string) (int, error) {
	n := 0
	for _, t := range tx.tickets {
		if t.EventID == eventID && t.Status == entity.TicketActive {
			n++
		}
	}
	return n, nil
}

func (tx *mockTx) HasActiveTicket(_ context.Context, eventID, attendeeID string) (bool, error) {
	for _, t := range tx.tickets {
		if t.EventID == eventID && t.AttendeeID == attendeeID && t.Status == entity.TicketActive {
			return true, nil
		}
	}
	return false, nil
}

func (tx *mockTx) TicketNumberExists(_ context.Context, number string) (bool, error) {
	for _, t := range tx.tickets {
		if t.TicketNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (tx *mockTx) AddTicket(_ context.Context, ticket entity.Ticket) error {
	if len(tx.store.AddTicketErrors) > 0 {
		err := tx.store.AddTicketErrors[0]
		tx.store.AddTicketErrors = tx.store.AddTicketErrors[1:]
		if err != nil {
			return err
		}
	}

	if _, ok := tx.tickets[ticket.ID]; ok {
		return fmt.Errorf("duplicate ticket id %s", ticket.ID)
	}
	tx.tickets[ticket.ID] = ticket
	return nil
}

func (tx *mockTx) TicketForUpdate(_ context.Context, ticketID string) (entity.Ticket, error) {
	t, ok := tx.tickets[ticketID]
	if !ok {
		return entity.Ticket{}, entity.ErrNotFound
	}
	return t, nil
}

func (tx *mockTx) UpdateTicket(_ context.Context, ticket entity.Ticket) error {
	if _, ok := tx.tickets[ticket.ID]; !ok {
		return entity.ErrNotFound
	}
	tx.tickets[ticket.ID] = ticket
	return nil
}

func (tx *mockTx) Publish(_ context.Context, e event.Event) error {
	tx.published = append(tx.published, e)
	return nil
}
