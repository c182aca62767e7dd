package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"github.com/Mamajin/Event-Reservation-sub000/command"
	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/event"
	"github.com/Mamajin/Event-Reservation-sub000/notification"
)

type TicketRepo interface {
	Get(ctx context.Context, ticketID string) (entity.Ticket, error)
	TransitionNotificationState(ctx context.Context, ticketID string, from, to entity.NotificationState) (bool, error)
	ActiveHolders(ctx context.Context, eventID string) ([]entity.TicketHolder, error)
}

type EventRepo interface {
	Get(ctx context.Context, eventID string) (entity.Event, error)
}

type AttendeeRepo interface {
	Get(ctx context.Context, attendeeID string) (entity.Attendee, error)
}

type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, to notification.Recipient, e entity.Event, t entity.Ticket) bool
	SendCancellation(ctx context.Context, to notification.Recipient, e entity.Event, t entity.Ticket) bool
	SendEventCancelled(ctx context.Context, holder entity.TicketHolder, e entity.Event) bool
}

type Reminder interface {
	Remind(ctx context.Context, ticketID string) error
}

type Handler struct {
	tickets   TicketRepo
	events    EventRepo
	attendees AttendeeRepo
	notifier  Notifier
	reminder  Reminder
}

func NewHandler(t TicketRepo, e EventRepo, a AttendeeRepo, n Notifier, r Reminder) Handler {
	return Handler{
		tickets:   t,
		events:    e,
		attendees: a,
		notifier:  n,
		reminder:  r,
	}
}

func (h Handler) SendRegistrationConfirmation(ctx context.Context, e *event.TicketRegistered) error {
	logger := log.FromContext(ctx).WithField("ticket_id", e.TicketID)

	ticket, err := h.tickets.Get(ctx, e.TicketID)
	if errors.Is(err, entity.ErrNotFound) {
		logger.Warn("Ticket no longer exists, skipping confirmation")
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting ticket: %w", err)
	}

	if ticket.NotificationState != entity.NotificationNone {
		logger.WithField("notification_state", ticket.NotificationState).Info("Confirmation already sent")
		return nil
	}
	if ticket.Status != entity.TicketActive {
		logger.WithField("status", ticket.Status).Info("Ticket is not active, skipping confirmation")
		return nil
	}

	ev, attendee, err := h.eventAndAttendee(ctx, ticket)
	if err != nil {
		return err
	}

	if !h.notifier.SendRegistrationConfirmation(ctx, notification.AttendeeRecipient(attendee), ev, ticket) {
		return fmt.Errorf("sending registration confirmation: %w", notification.ErrNotSent)
	}

	ok, err := h.tickets.TransitionNotificationState(ctx, ticket.ID, entity.NotificationNone, entity.NotificationConfirmed)
	if err != nil {
		return fmt.Errorf("marking ticket confirmed: %w", err)
	}
	if !ok {
		logger.Warn("Ticket changed while the confirmation was sent")
	}

	return nil
}

func (h Handler) SendCancellationNotice(ctx context.Context, e *event.TicketCancelled) error {
	ticket, err := h.tickets.Get(ctx, e.TicketID)
	if errors.Is(err, entity.ErrNotFound) {
		log.FromContext(ctx).WithField("ticket_id", e.TicketID).Warn("Ticket no longer exists, skipping cancellation notice")
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting ticket: %w", err)
	}

	ev, attendee, err := h.eventAndAttendee(ctx, ticket)
	if err != nil {
		return err
	}

	if !h.notifier.SendCancellation(ctx, notification.AttendeeRecipient(attendee), ev, ticket) {
		return fmt.Errorf("sending cancellation notice: %w", notification.ErrNotSent)
	}

	return nil
}

// NotifyEventCancelled emails every active ticket holder once. Individual send
// failures are logged and do not cause the whole batch to be redelivered.
func (h Handler) NotifyEventCancelled(ctx context.Context, e *event.EventCancelled) error {
	logger := log.FromContext(ctx).WithField("event_id", e.EventID)

	ev, err := h.events.Get(ctx, e.EventID)
	if errors.Is(err, entity.ErrNotFound) {
		logger.Warn("Event no longer exists, skipping cancellation notices")
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting event: %w", err)
	}

	holders, err := h.tickets.ActiveHolders(ctx, e.EventID)
	if err != nil {
		return fmt.Errorf("getting ticket holders: %w", err)
	}

	failed := 0
	for _, holder := range holders {
		if !h.notifier.SendEventCancelled(ctx, holder, ev) {
			failed++
		}
	}

	logger.WithFields(logrus.Fields{
		"holders": len(holders),
		"failed":  failed,
	}).Info("Event cancellation notices sent")

	return nil
}

func (h Handler) SendTicketReminder(ctx context.Context, cmd *command.SendTicketReminder) error {
	err := h.reminder.Remind(ctx, cmd.TicketID)
	if errors.Is(err, entity.ErrReminderNotDue) || errors.Is(err, entity.ErrNotFound) {
		log.FromContext(ctx).WithField("ticket_id", cmd.TicketID).WithError(err).Info("Skipping reminder")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminding ticket holder: %w", err)
	}

	return nil
}

func (h Handler) eventAndAttendee(ctx context.Context, ticket entity.Ticket) (entity.Event, entity.Attendee, error) {
	ev, err := h.events.Get(ctx, ticket.EventID)
	if err != nil {
		return entity.Event{}, entity.Attendee{}, fmt.Errorf("getting event: %w", err)
	}

	attendee, err := h.attendees.Get(ctx, ticket.AttendeeID)
	if err != nil {
		return entity.Event{}, entity.Attendee{}, fmt.Errorf("getting attendee: %w", err)
	}

	return ev, attendee, nil
}
