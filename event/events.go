package event

import (
	"time"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

type TicketRegistered struct {
	Header       Header    `json:"header"`
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	EventID      string    `json:"event_id"`
	AttendeeID   string    `json:"attendee_id"`
	RegisterDate time.Time `json:"register_date"`
}

// The ticket ID is the idempotency key: one confirmation per ticket.
func NewTicketRegistered(ticket entity.Ticket) TicketRegistered {
	return TicketRegistered{
		Header:       NewHeader("registered-"+ticket.ID, ticket.RegisterDate),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		EventID:      ticket.EventID,
		AttendeeID:   ticket.AttendeeID,
		RegisterDate: ticket.RegisterDate,
	}
}

type TicketCancelled struct {
	Header           Header    `json:"header"`
	TicketID         string    `json:"ticket_id"`
	TicketNumber     string    `json:"ticket_number"`
	EventID          string    `json:"event_id"`
	AttendeeID       string    `json:"attendee_id"`
	CancellationDate time.Time `json:"cancellation_date"`
	Reason           string    `json:"reason,omitempty"`
}

func NewTicketCancelled(ticket entity.Ticket) TicketCancelled {
	e := TicketCancelled{
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		EventID:      ticket.EventID,
		AttendeeID:   ticket.AttendeeID,
	}
	if ticket.CancellationDate != nil {
		e.CancellationDate = *ticket.CancellationDate
	}
	if ticket.CancellationReason != nil {
		e.Reason = *ticket.CancellationReason
	}
	e.Header = NewHeader("cancelled-"+ticket.ID, e.CancellationDate)
	return e
}

type EventCancelled struct {
	Header      Header    `json:"header"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func NewEventCancelled(e entity.Event, cancelledAt time.Time) EventCancelled {
	return EventCancelled{
		Header:      NewHeader("event-cancelled-"+e.ID, cancelledAt),
		EventID:     e.ID,
		Title:       e.Title,
		CancelledAt: cancelledAt,
	}
}

func (e TicketRegistered) EventHeader() Header { return e.Header }

func (e TicketCancelled) EventHeader() Header { return e.Header }

func (e EventCancelled) EventHeader() Header { return e.Header }
