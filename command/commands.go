package command

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string, publishedAt time.Time) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    publishedAt.UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type SendTicketReminder struct {
	Header   header `json:"header"`
	TicketID string `json:"ticket_id"`
}

func NewSendTicketReminder(ticketID string, now time.Time) SendTicketReminder {
	return SendTicketReminder{
		Header:   newHeader("reminder-"+ticketID, now),
		TicketID: ticketID,
	}
}
