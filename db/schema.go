package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	ticketNumberConstraint    = "tickets_ticket_number_key"
	oneActiveTicketConstraint = "tickets_one_active_per_attendee"
	attendeeEmailConstraint   = "attendees_email_key"
)

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateAttendeesTable(ctx, db); err != nil {
		return fmt.Errorf("creating attendees table: %w", err)
	}

	if err := CreateOrganizersTable(ctx, db); err != nil {
		return fmt.Errorf("creating organizers table: %w", err)
	}

	if err := CreateEventsTable(ctx, db); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	if err := CreateTicketsTable(ctx, db); err != nil {
		return fmt.Errorf("creating tickets table: %w", err)
	}

	return nil
}

func CreateAttendeesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS attendees (
		attendee_id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		birth_date DATE,
		CONSTRAINT `+attendeeEmailConstraint+` UNIQUE (email)
	);`)
	return err
}

func CreateOrganizersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS organizers (
		organizer_id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES attendees (attendee_id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL
	);`)
	return err
}

func CreateEventsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS events (
		event_id UUID PRIMARY KEY,
		organizer_id UUID NOT NULL REFERENCES organizers (organizer_id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		event_create TIMESTAMP WITH TIME ZONE NOT NULL,
		start_register TIMESTAMP WITH TIME ZONE NOT NULL,
		end_register TIMESTAMP WITH TIME ZONE NOT NULL,
		start_event TIMESTAMP WITH TIME ZONE NOT NULL,
		end_event TIMESTAMP WITH TIME ZONE NOT NULL,
		max_attendee INTEGER NOT NULL CHECK (max_attendee >= 0),
		status_registration VARCHAR(16) NOT NULL DEFAULT 'OPEN',
		visibility VARCHAR(16) NOT NULL DEFAULT 'PUBLIC',
		allowed_email_domains TEXT NOT NULL DEFAULT '',
		min_age_requirement INTEGER NOT NULL DEFAULT 0
	);`)
	return err
}

func CreateTicketsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tickets (
		ticket_id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events (event_id) ON DELETE CASCADE,
		attendee_id UUID NOT NULL REFERENCES attendees (attendee_id) ON DELETE CASCADE,
		register_date TIMESTAMP WITH TIME ZONE NOT NULL,
		status VARCHAR(16) NOT NULL,
		ticket_number VARCHAR(32) NOT NULL,
		notification_state VARCHAR(16) NOT NULL DEFAULT 'NONE',
		cancellation_date TIMESTAMP WITH TIME ZONE,
		cancellation_reason TEXT,
		CONSTRAINT `+ticketNumberConstraint+` UNIQUE (ticket_number)
	);`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS `+oneActiveTicketConstraint+`
		ON tickets (event_id, attendee_id) WHERE status = 'ACTIVE';`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS tickets_notification_state_idx
		ON tickets (notification_state) WHERE status = 'ACTIVE';`)
	return err
}
