package organizing_test

import (
	"context"
	"sync"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/event"
	"github.com/Mamajin/Event-Reservation-sub000/organizing"
)

type MockStore struct {
	lock       sync.Mutex
	Events     map[string]entity.Event
	Attendees  map[string]entity.Attendee
	Organizers map[string]entity.Organizer
	Active     map[string]int
	Published  []event.Event
}

func NewMockStore() *MockStore {
	return &MockStore{
		Events:     make(map[string]entity.Event),
		Attendees:  make(map[string]entity.Attendee),
		Organizers: make(map[string]entity.Organizer),
		Active:     make(map[string]int),
	}
}

func (s *MockStore) InTx(_ context.Context, fn func(tx organizing.Tx) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	tx := &mockTx{store: s, events: make(map[string]entity.Event)}
	if err := fn(tx); err != nil {
		return err
	}

	for id, e := range tx.events {
		s.Events[id] = e
	}
	s.Published = append(s.Published, tx.published...)
	return nil
}

func (s *MockStore) AddEvent(_ context.Context, e entity.Event) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Events[e.ID] = e
	return nil
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

func (s *MockStore) CountActiveTickets(_ context.Context, eventID string) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.Active[eventID], nil
}

func (s *MockStore) AddAttendee(_ context.Context, a entity.Attendee) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, existing := range s.Attendees {
		if existing.Email == a.Email {
			return entity.ErrEmailTaken
		}
	}
	s.Attendees[a.ID] = a
	return nil
}

func (s *MockStore) Attendee(_ context.Context, attendeeID string) (entity.Attendee, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	a, ok := s.Attendees[attendeeID]
	if !ok {
		return entity.Attendee{}, entity.ErrNotFound
	}
	return a, nil
}

func (s *MockStore) AddOrganizer(_ context.Context, o entity.Organizer) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Organizers[o.ID] = o
	return nil
}

func (s *MockStore) OrganizerByUser(_ context.Context, userID string) (entity.Organizer, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.organizerByUser(userID)
}

func (s *MockStore) organizerByUser(userID string) (entity.Organizer, bool, error) {
	for _, o := range s.Organizers {
		if o.UserID == userID {
			return o, true, nil
		}
	}
	return entity.Organizer{}, false, nil
}

// mockTx runs with the store lock held.
type mockTx struct {
	store     *MockStore
	events    map[string]entity.Event
	published []event.Event
}

func (tx *mockTx) EventForUpdate(_ context.Context, eventID string) (entity.Event, error) {
	if e, ok := tx.events[eventID]; ok {
		return e, nil
	}
	e, ok := tx.store.Events[eventID]
	if !ok {
		return entity.Event{}, entity.ErrNotFound
	}
	return e, nil
}

func (tx *mockTx) UpdateEvent(_ context.Context, e entity.Event) error {
	tx.events[e.ID] = e
	return nil
}

func (tx *mockTx) CountActiveTickets(_ context.Context, eventID string) (int, error) {
	return tx.store.Active[eventID], nil
}

func (tx *mockTx) Publish(_ context.Context, e event.Event) error {
	tx.published = append(tx.published, e)
	return nil
}
