package message_test

import (
	"context"
	"sync"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/notification"
)

type MockRepo struct {
	lock      sync.Mutex
	Tickets   map[string]entity.Ticket
	Events    map[string]entity.Event
	Attendees map[string]entity.Attendee
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

func (r *MockRepo) ActiveHolders(_ context.Context, eventID string) ([]entity.TicketHolder, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var holders []entity.TicketHolder
	for _, t := range r.Tickets {
		if t.EventID != eventID || t.Status != entity.TicketActive {
			continue
		}
		a := r.Attendees[t.AttendeeID]
		holders = append(holders, entity.TicketHolder{Ticket: t, Email: a.Email, Name: a.Name})
	}
	return holders, nil
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

type Notice struct {
	Kind     notification.Kind
	To       string
	TicketID string
}

type MockNotifier struct {
	lock sync.Mutex
	Sent []Notice
	// Fail makes every send report failure.
	Fail bool
}

func (m *MockNotifier) record(kind notification.Kind, to, ticketID string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Fail {
		return false
	}
	m.Sent = append(m.Sent, Notice{Kind: kind, To: to, TicketID: ticketID})
	return true
}

func (m *MockNotifier) SendRegistrationConfirmation(_ context.Context, to notification.Recipient, _ entity.Event, t entity.Ticket) bool {
	return m.record(notification.KindRegistrationConfirmation, to.Email, t.ID)
}

func (m *MockNotifier) SendCancellation(_ context.Context, to notification.Recipient, _ entity.Event, t entity.Ticket) bool {
	return m.record(notification.KindCancellation, to.Email, t.ID)
}

func (m *MockNotifier) SendEventCancelled(_ context.Context, holder entity.TicketHolder, _ entity.Event) bool {
	return m.record(notification.KindEventCancelled, holder.Email, holder.Ticket.ID)
}

type MockReminder struct {
	lock     sync.Mutex
	Reminded []string
	Err      error
}

func (m *MockReminder) Remind(_ context.Context, ticketID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Reminded = append(m.Reminded, ticketID)
	return nil
}
