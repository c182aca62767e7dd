package entity

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"
)

type TicketStatus string

const (
	TicketActive    TicketStatus = "ACTIVE"
	TicketCancelled TicketStatus = "CANCELLED"
	TicketExpired   TicketStatus = "EXPIRED"
)

// NotificationState tracks which notifications a ticket holder has received.
type NotificationState string

const (
	NotificationNone      NotificationState = "NONE"
	NotificationConfirmed NotificationState = "CONFIRMED"
	NotificationReminded  NotificationState = "REMINDED"
)

const (
	TicketNumberPrefix       = "TICKET-"
	ticketNumberSuffixLength = 8
	ticketNumberAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var ticketNumberPattern = regexp.MustCompile(`^TICKET-[0-9A-Z]{8}$`)

type Ticket struct {
	ID                 string            `db:"ticket_id" json:"ticket_id"`
	EventID            string            `db:"event_id" json:"event_id"`
	AttendeeID         string            `db:"attendee_id" json:"attendee_id"`
	RegisterDate       time.Time         `db:"register_date" json:"register_date"`
	Status             TicketStatus      `db:"status" json:"status"`
	TicketNumber       string            `db:"ticket_number" json:"ticket_number"`
	NotificationState  NotificationState `db:"notification_state" json:"notification_state"`
	CancellationDate   *time.Time        `db:"cancellation_date" json:"cancellation_date,omitempty"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
}

func NewTicket(id, eventID, attendeeID, ticketNumber string, now time.Time) Ticket {
	return Ticket{
		ID:                id,
		EventID:           eventID,
		AttendeeID:        attendeeID,
		RegisterDate:      now,
		Status:            TicketActive,
		TicketNumber:      ticketNumber,
		NotificationState: NotificationNone,
	}
}

func (t *Ticket) Cancel(now time.Time, reason string) error {
	if t.Status == TicketCancelled {
		return fmt.Errorf("%w: ticket %s", ErrAlreadyCancelled, t.TicketNumber)
	}

	t.Status = TicketCancelled
	t.CancellationDate = &now
	if reason != "" {
		t.CancellationReason = &reason
	}
	return nil
}

// EffectiveStatus reports EXPIRED for an active ticket whose event has ended.
func (t Ticket) EffectiveStatus(eventEnd, now time.Time) TicketStatus {
	if t.Status == TicketActive && !now.Before(eventEnd) {
		return TicketExpired
	}
	return t.Status
}

type TicketNumberGenerator func() string

// Bytes at or above this bound are rejected so every suffix character is uniform.
const ticketNumberByteBound = 256 - 256%len(ticketNumberAlphabet)

func NewTicketNumber() string {
	n, err := ticketNumberFrom(rand.Reader)
	if err != nil {
		panic(fmt.Errorf("reading random bytes: %w", err))
	}
	return n
}

func ticketNumberFrom(r io.Reader) (string, error) {
	suffix := make([]byte, 0, ticketNumberSuffixLength)
	buf := make([]byte, ticketNumberSuffixLength)

	for len(suffix) < ticketNumberSuffixLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= ticketNumberByteBound {
				continue
			}
			suffix = append(suffix, ticketNumberAlphabet[int(b)%len(ticketNumberAlphabet)])
			if len(suffix) == ticketNumberSuffixLength {
				break
			}
		}
	}

	return TicketNumberPrefix + string(suffix), nil
}

func IsValidTicketNumber(n string) bool {
	return ticketNumberPattern.MatchString(n)
}

// TicketHolder is an active ticket together with the attendee contact details.
type TicketHolder struct {
	Ticket Ticket
	Email  string
	Name   string
}
