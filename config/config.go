package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	MailTransportLog  = "log"
	MailTransportSMTP = "smtp"
	MailTransportSES  = "ses"
)

type Config struct {
	PostgresURL         string
	RedisAddr           string
	HTTPAddr            string
	LogLevel            logrus.Level
	NotificationTimeout time.Duration
	Mail                Mail
	Reminder            Reminder
}

type Mail struct {
	Transport string
	From      string
	FromName  string
	SMTP      SMTP
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

type Reminder struct {
	Cron     string
	Location *time.Location
}

// Load reads an optional .env file and then the process environment. Variables
// already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	return FromEnv(os.LookupEnv)
}

func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		PostgresURL: get("POSTGRES_URL", ""),
		RedisAddr:   get("REDIS_ADDR", "localhost:6379"),
		HTTPAddr:    get("HTTP_ADDR", ":8080"),
		Mail: Mail{
			Transport: get("MAIL_TRANSPORT", MailTransportLog),
			From:      get("MAIL_FROM", "no-reply@example.com"),
			FromName:  get("MAIL_FROM_NAME", "Event Reservations"),
			SMTP: SMTP{
				Host:     get("SMTP_HOST", ""),
				Username: get("SMTP_USERNAME", ""),
				Password: get("SMTP_PASSWORD", ""),
			},
		},
		Reminder: Reminder{
			Cron: get("REMINDER_CRON", "0 * * * *"),
		},
	}

	if cfg.PostgresURL == "" {
		return Config{}, errors.New("POSTGRES_URL is required")
	}

	level, err := logrus.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	cfg.NotificationTimeout, err = time.ParseDuration(get("NOTIFICATION_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing NOTIFICATION_TIMEOUT: %w", err)
	}

	cfg.Mail.SMTP.Port, err = strconv.Atoi(get("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing SMTP_PORT: %w", err)
	}

	cfg.Reminder.Location, err = time.LoadLocation(get("TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing TIMEZONE: %w", err)
	}

	switch cfg.Mail.Transport {
	case MailTransportLog, MailTransportSES:
	case MailTransportSMTP:
		if cfg.Mail.SMTP.Host == "" {
			return Config{}, errors.New("SMTP_HOST is required when MAIL_TRANSPORT=smtp")
		}
	default:
		return Config{}, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.Mail.Transport)
	}

	return cfg, nil
}
