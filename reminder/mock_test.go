package reminder_test

import (
	"context"
	"sync"
	"time"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/notification"
)

type MockRepo struct {
	lock      sync.Mutex
	Tickets   map[string]entity.Ticket
	Events    map[string]entity.Event
	Attendees map[string]entity.Attendee

	// OnSelected runs after DueReminders has picked its tickets.
	OnSelected func()
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		Tickets:   make(map[string]entity.Ticket),
		Events:    make(map[string]entity.Event),
		Attendees: make(map[string]entity.Attendee),
	}
}

func (r *MockRepo) Get(_ context.Context, ticketID string) (entity.Ticket, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.Tickets[ticketID]
	if !ok {
		return entity.Ticket{}, entity.ErrNotFound
	}
	return t, nil
}

func (r *MockRepo) DueReminders(_ context.Context, from, to time.Time) ([]entity.Ticket, error) {
	r.lock.Lock()
	var due []entity.Ticket
	for _, t := range r.Tickets {
		e := r.Events[t.EventID]
		if t.Status != entity.TicketActive || t.NotificationState != entity.NotificationConfirmed {
			continue
		}
		if e.StartEvent.Before(from) || !e.StartEvent.Before(to) || e.StatusRegistration == entity.RegistrationCancelled {
			continue
		}
		due = append(due, t)
	}
	r.lock.Unlock()

	if r.OnSelected != nil {
		r.OnSelected()
	}
	return due, nil
}

func (r *MockRepo) TransitionNotificationState(_ context.Context, ticketID string, from, to entity.NotificationState) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.Tickets[ticketID]
	if !ok || t.Status != entity.TicketActive || t.NotificationState != from {
		return false, nil
	}
	t.NotificationState = to
	r.Tickets[ticketID] = t
	return true, nil
}

func (r *MockRepo) Ticket(id string) entity.Ticket {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Tickets[id]
}

type mockEvents struct{ repo *MockRepo }

func (m mockEvents) Get(_ context.Context, eventID string) (entity.Event, error) {
	m.repo.lock.Lock()
	defer m.repo.lock.Unlock()

	e, ok := m.repo.Events[eventID]
	if !ok {
		return entity.Event{}, entity.ErrNotFound
	}
	return e, nil
}

type mockAttendees struct{ repo *MockRepo }

func (m mockAttendees) Get(_ context.Context, attendeeID string) (entity.Attendee, error) {
	m.repo.lock.Lock()
	defer m.repo.lock.Unlock()

	a, ok := m.repo.Attendees[attendeeID]
	if !ok {
		return entity.Attendee{}, entity.ErrNotFound
	}
	return a, nil
}

type MockNotifier struct {
	lock     sync.Mutex
	Reminded []string
	// FailFor makes sends to these emails report failure.
	FailFor map[string]bool
}

func (m *MockNotifier) SendReminder(_ context.Context, to notification.Recipient, _ entity.Event, t entity.Ticket) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FailFor[to.Email] {
		return false
	}
	m.Reminded = append(m.Reminded, t.ID)
	return true
}
