package event

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type Header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewHeader(idempotencyKey string, publishedAt time.Time) Header {
	return Header{
		ID:             watermill.NewUUID(),
		PublishedAt:    publishedAt.UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// Event is a fact written to the outbox. The header's idempotency key travels
// with the message so handlers can drop duplicates.
type Event interface {
	EventHeader() Header
}
