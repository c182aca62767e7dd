package clients

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/Mamajin/Event-Reservation-sub000/config"
	"github.com/Mamajin/Event-Reservation-sub000/notification"
)

// New builds the mail transport selected by MAIL_TRANSPORT.
func New(ctx context.Context, cfg config.Mail) (notification.Transport, error) {
	sender := mail.Address{Name: cfg.FromName, Address: cfg.From}

	switch cfg.Transport {
	case config.MailTransportSMTP:
		t, err := NewSMTPTransport(cfg.SMTP, sender)
		if err != nil {
			return nil, fmt.Errorf("creating smtp transport: %w", err)
		}
		return t, nil
	case config.MailTransportSES:
		t, err := NewSESTransport(ctx, sender)
		if err != nil {
			return nil, fmt.Errorf("creating ses transport: %w", err)
		}
		return t, nil
	case config.MailTransportLog, "":
		return LogTransport{}, nil
	}

	return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}
