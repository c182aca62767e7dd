package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

const DefaultTimeout = 10 * time.Second

// ErrNotSent is returned by callers that need an error for a failed send.
var ErrNotSent = errors.New("notification was not sent")

type Transport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Kind string

const (
	KindRegistrationConfirmation Kind = "registration_confirmation"
	KindCancellation             Kind = "cancellation"
	KindReminder                 Kind = "reminder"
	KindEventCancelled           Kind = "event_cancelled"
)

type Recipient struct {
	Email string
	Name  string
}

func AttendeeRecipient(a entity.Attendee) Recipient {
	return Recipient{Email: a.Email, Name: a.Name}
}

type data struct {
	Name   string
	Event  entity.Event
	Ticket entity.Ticket
}

// Dispatcher renders and sends attendee emails. Send failures are logged and
// reported as false; they never propagate as errors.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
}

func NewDispatcher(transport Transport, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Dispatcher{
		transport: transport,
		timeout:   timeout,
	}
}

func (d *Dispatcher) SendRegistrationConfirmation(ctx context.Context, to Recipient, e entity.Event, t entity.Ticket) bool {
	return d.send(ctx, KindRegistrationConfirmation, to, data{Name: to.Name, Event: e, Ticket: t})
}

func (d *Dispatcher) SendCancellation(ctx context.Context, to Recipient, e entity.Event, t entity.Ticket) bool {
	return d.send(ctx, KindCancellation, to, data{Name: to.Name, Event: e, Ticket: t})
}

func (d *Dispatcher) SendReminder(ctx context.Context, to Recipient, e entity.Event, t entity.Ticket) bool {
	return d.send(ctx, KindReminder, to, data{Name: to.Name, Event: e, Ticket: t})
}

func (d *Dispatcher) SendEventCancelled(ctx context.Context, holder entity.TicketHolder, e entity.Event) bool {
	to := Recipient{Email: holder.Email, Name: holder.Name}
	return d.send(ctx, KindEventCancelled, to, data{Name: to.Name, Event: e, Ticket: holder.Ticket})
}

func (d *Dispatcher) send(ctx context.Context, kind Kind, to Recipient, body data) bool {
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"notification": kind,
		"ticket_id":    body.Ticket.ID,
		"event_id":     body.Event.ID,
	})

	subject, html, err := render(kind, body)
	if err != nil {
		logger.WithError(err).Error("Failed to render notification")
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.transport.Send(sendCtx, to.Email, subject, html); err != nil {
		logger.WithError(err).Error("Failed to send notification")
		return false
	}

	logger.Info("Notification sent")
	return true
}

// Subjects are plain text; bodies are HTML escaped.
type message struct {
	subject *texttemplate.Template
	body    *template.Template
}

var messages = map[Kind]message{
	KindRegistrationConfirmation: {
		subject: mustParseText("Registration confirmed: {{.Event.Title}}"),
		body: mustParse(`<p>Hi {{.Name}},</p>
<p>You are registered for <strong>{{.Event.Title}}</strong>.</p>
<p>Your ticket number is <strong>{{.Ticket.TicketNumber}}</strong>.</p>
<p>The event starts on {{.Event.StartEvent.Format "Monday, 2 January 2006 15:04 MST"}}.</p>`),
	},
	KindCancellation: {
		subject: mustParseText("Ticket cancelled: {{.Event.Title}}"),
		body: mustParse(`<p>Hi {{.Name}},</p>
<p>Your ticket <strong>{{.Ticket.TicketNumber}}</strong> for <strong>{{.Event.Title}}</strong> has been cancelled.</p>
{{with .Ticket.CancellationReason}}<p>Reason: {{.}}</p>{{end}}`),
	},
	KindReminder: {
		subject: mustParseText("Reminder: {{.Event.Title}} is tomorrow"),
		body: mustParse(`<p>Hi {{.Name}},</p>
<p><strong>{{.Event.Title}}</strong> starts on {{.Event.StartEvent.Format "Monday, 2 January 2006 15:04 MST"}}.</p>
<p>Bring your ticket number: <strong>{{.Ticket.TicketNumber}}</strong>.</p>`),
	},
	KindEventCancelled: {
		subject: mustParseText("Event cancelled: {{.Event.Title}}"),
		body: mustParse(`<p>Hi {{.Name}},</p>
<p>Unfortunately <strong>{{.Event.Title}}</strong> has been cancelled by the organizer.</p>
<p>Your ticket <strong>{{.Ticket.TicketNumber}}</strong> will not be needed.</p>`),
	},
}

func mustParseText(text string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New("").Parse(text))
}

func mustParse(text string) *template.Template {
	return template.Must(template.New("").Parse(text))
}

func render(kind Kind, body data) (subject, html string, err error) {
	m, ok := messages[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}

	var buf bytes.Buffer
	if err := m.subject.Execute(&buf, body); err != nil {
		return "", "", fmt.Errorf("rendering subject: %w", err)
	}
	subject = buf.String()

	buf.Reset()
	if err := m.body.Execute(&buf, body); err != nil {
		return "", "", fmt.Errorf("rendering body: %w", err)
	}

	return subject, buf.String(), nil
}
