package message

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/jonboulle/clockwork"

	"github.com/Mamajin/Event-Reservation-sub000/command"
)

// ReminderQueue hands reminders to the command processor so that failed sends
// are retried by the router.
type ReminderQueue struct {
	bus   *cqrs.CommandBus
	clock clockwork.Clock
}

func NewReminderQueue(bus *cqrs.CommandBus, clock clockwork.Clock) ReminderQueue {
	return ReminderQueue{
		bus:   bus,
		clock: clock,
	}
}

func (q ReminderQueue) Remind(ctx context.Context, ticketID string) error {
	if err := q.bus.Send(ctx, command.NewSendTicketReminder(ticketID, q.clock.Now())); err != nil {
		return fmt.Errorf("sending reminder command: %w", err)
	}
	return nil
}
