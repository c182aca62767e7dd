package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/notification"
)

type TicketRepo interface {
	Get(ctx context.Context, ticketID string) (entity.Ticket, error)
	DueReminders(ctx context.Context, from, to time.Time) ([]entity.Ticket, error)
	TransitionNotificationState(ctx context.Context, ticketID string, from, to entity.NotificationState) (bool, error)
}

type EventRepo interface {
	Get(ctx context.Context, eventID string) (entity.Event, error)
}

type AttendeeRepo interface {
	Get(ctx context.Context, attendeeID string) (entity.Attendee, error)
}

type Notifier interface {
	SendReminder(ctx context.Context, to notification.Recipient, e entity.Event, t entity.Ticket) bool
}

// Reminder sends the day-before reminder for a single ticket.
type Reminder struct {
	tickets   TicketRepo
	events    EventRepo
	attendees AttendeeRepo
	notifier  Notifier
}

func NewReminder(t TicketRepo, e EventRepo, a AttendeeRepo, n Notifier) *Reminder {
	return &Reminder{
		tickets:   t,
		events:    e,
		attendees: a,
		notifier:  n,
	}
}

// Remind re-reads the ticket, so one cancelled since it was selected is skipped with
// entity.ErrReminderNotDue. The ticket is marked REMINDED only after a successful send.
func (r *Reminder) Remind(ctx context.Context, ticketID string) error {
	ticket, err := r.tickets.Get(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("getting ticket: %w", err)
	}

	if ticket.Status != entity.TicketActive || ticket.NotificationState != entity.NotificationConfirmed {
		return fmt.Errorf("%w: status %s, notification state %s",
			entity.ErrReminderNotDue, ticket.Status, ticket.NotificationState)
	}

	ev, err := r.events.Get(ctx, ticket.EventID)
	if err != nil {
		return fmt.Errorf("getting event: %w", err)
	}
	if ev.StatusRegistration == entity.RegistrationCancelled {
		return fmt.Errorf("%w: event is cancelled", entity.ErrReminderNotDue)
	}

	attendee, err := r.attendees.Get(ctx, ticket.AttendeeID)
	if err != nil {
		return fmt.Errorf("getting attendee: %w", err)
	}

	if !r.notifier.SendReminder(ctx, notification.AttendeeRecipient(attendee), ev, ticket) {
		return fmt.Errorf("sending reminder: %w", notification.ErrNotSent)
	}

	ok, err := r.tickets.TransitionNotificationState(ctx, ticket.ID, entity.NotificationConfirmed, entity.NotificationReminded)
	if err != nil {
		return fmt.Errorf("marking ticket reminded: %w", err)
	}
	if !ok {
		log.FromContext(ctx).WithField("ticket_id", ticket.ID).Warn("Ticket changed while the reminder was sent")
	}

	return nil
}

type Sender interface {
	Remind(ctx context.Context, ticketID string) error
}

// Result counts the outcome of one run. Accepted is the number of tickets the
// Sender took: a Reminder has emailed them, a ReminderQueue has only queued a
// command and the email goes out when that command is handled.
type Result struct {
	Accepted int
	Skipped  int
	Failed   int
}

// Job selects tickets for events starting tomorrow and hands each one to a Sender.
type Job struct {
	tickets  TicketRepo
	sender   Sender
	clock    clockwork.Clock
	location *time.Location
}

func NewJob(tickets TicketRepo, sender Sender, clock clockwork.Clock, location *time.Location) *Job {
	if location == nil {
		location = time.UTC
	}

	return &Job{
		tickets:  tickets,
		sender:   sender,
		clock:    clock,
		location: location,
	}
}

// Tomorrow returns [start of tomorrow, start of the day after) in loc.
func Tomorrow(now time.Time, loc *time.Location) (from, to time.Time) {
	y, m, d := now.In(loc).Date()
	from = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	to = time.Date(y, m, d+2, 0, 0, 0, 0, loc)
	return from, to
}

// Run never fails because of a single ticket; only the selection query can fail it.
func (j *Job) Run(ctx context.Context) (Result, error) {
	from, to := Tomorrow(j.clock.Now(), j.location)

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	})

	tickets, err := j.tickets.DueReminders(ctx, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("selecting tickets to remind: %w", err)
	}

	var res Result
	for _, t := range tickets {
		err := j.sender.Remind(ctx, t.ID)
		switch {
		case err == nil:
			res.Accepted++
		case isSkip(err):
			res.Skipped++
		default:
			res.Failed++
			logger.WithError(err).WithField("ticket_id", t.ID).Error("Failed to remind ticket holder")
		}
	}

	logger.WithFields(logrus.Fields{
		"accepted": res.Accepted,
		"skipped":  res.Skipped,
		"failed":   res.Failed,
	}).Info("Reminder run finished")

	return res, nil
}

func isSkip(err error) bool {
	return errors.Is(err, entity.ErrReminderNotDue) || errors.Is(err, entity.ErrNotFound)
}
