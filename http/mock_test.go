package http_test

import (
	"context"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/organizing"
	"github.com/Mamajin/Event-Reservation-sub000/registration"
)

type MockRegistrar struct {
	Err error

	RegisteredEvent    string
	RegisteredAttendee string
	CancelledBy        string
	CancelReason       string
}

func (m *MockRegistrar) Register(_ context.Context, eventID, attendeeID string) (entity.Ticket, error) {
	m.RegisteredEvent = eventID
	m.RegisteredAttendee = attendeeID
	if m.Err != nil {
		return entity.Ticket{}, m.Err
	}
	return entity.NewTicket("t-1", eventID, attendeeID, "TICKET-AAAA0001", now), nil
}

func (m *MockRegistrar) Cancel(_ context.Context, ticketID, requesterID, reason string) (entity.Ticket, error) {
	m.CancelledBy = requesterID
	m.CancelReason = reason
	if m.Err != nil {
		return entity.Ticket{}, m.Err
	}
	t := entity.NewTicket(ticketID, "e-1", requesterID, "TICKET-AAAA0001", now)
	_ = t.Cancel(now, reason)
	return t, nil
}

func (m *MockRegistrar) Ticket(_ context.Context, ticketID string) (registration.TicketView, error) {
	if m.Err != nil {
		return registration.TicketView{}, m.Err
	}
	t := entity.NewTicket(ticketID, "e-1", "a-1", "TICKET-AAAA0001", now)
	return registration.TicketView{Ticket: t, EffectiveStatus: entity.TicketExpired}, nil
}

type MockOrganizer struct {
	Err error

	Attendee organizing.AttendeeInput
	UserID   string
	Input    organizing.EventInput
}

func (m *MockOrganizer) RegisterAttendee(_ context.Context, in organizing.AttendeeInput) (entity.Attendee, error) {
	m.Attendee = in
	if m.Err != nil {
		return entity.Attendee{}, m.Err
	}
	return entity.Attendee{ID: "a-1", Email: in.Email, Name: in.Name, BirthDate: in.BirthDate}, nil
}

func (m *MockOrganizer) RegisterOrganizer(_ context.Context, userID, name string) (entity.Organizer, error) {
	m.UserID = userID
	if m.Err != nil {
		return entity.Organizer{}, m.Err
	}
	return entity.Organizer{ID: "o-1", UserID: userID, Name: name}, nil
}

func (m *MockOrganizer) CreateEvent(_ context.Context, userID string, in organizing.EventInput) (entity.Event, error) {
	m.UserID = userID
	m.Input = in
	if m.Err != nil {
		return entity.Event{}, m.Err
	}
	return entity.Event{ID: "e-1", Title: in.Title, MaxAttendee: in.MaxAttendee}, nil
}

func (m *MockOrganizer) UpdateEvent(_ context.Context, userID, eventID string, in organizing.EventInput) (entity.Event, error) {
	m.UserID = userID
	m.Input = in
	if m.Err != nil {
		return entity.Event{}, m.Err
	}
	return entity.Event{ID: eventID, Title: in.Title, MaxAttendee: in.MaxAttendee}, nil
}

func (m *MockOrganizer) CancelEvent(_ context.Context, userID, eventID string) (entity.Event, error) {
	m.UserID = userID
	if m.Err != nil {
		return entity.Event{}, m.Err
	}
	return entity.Event{ID: eventID, StatusRegistration: entity.RegistrationCancelled}, nil
}

func (m *MockOrganizer) EventSummary(_ context.Context, eventID string) (organizing.EventSummary, error) {
	if m.Err != nil {
		return organizing.EventSummary{}, m.Err
	}
	return organizing.EventSummary{
		Event:          entity.Event{ID: eventID, MaxAttendee: 10},
		ActiveTickets:  10,
		AvailableSpots: 0,
		IsFull:         true,
		Status:         entity.EventUpcoming,
	}, nil
}
