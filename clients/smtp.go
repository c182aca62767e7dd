package clients

import (
	"context"
	"fmt"
	"net/mail"

	gomail "github.com/wneessen/go-mail"

	"github.com/Mamajin/Event-Reservation-sub000/config"
)

type SMTPTransport struct {
	client *gomail.Client
	sender mail.Address
}

func NewSMTPTransport(cfg config.SMTP, sender mail.Address) (*SMTPTransport, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	c, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialising smtp client: %w", err)
	}

	return &SMTPTransport{
		client: c,
		sender: sender,
	}, nil
}

func (t *SMTPTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(t.sender.Name, t.sender.Address); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}

	return nil
}
