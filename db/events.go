package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

const eventColumns = `event_id, organizer_id, title, event_create, start_register, end_register,
	start_event, end_event, max_attendee, status_registration, visibility,
	allowed_email_domains, min_age_requirement`

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) EventRepo {
	return EventRepo{
		db: db,
	}
}

func (r EventRepo) Add(ctx context.Context, e entity.Event) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO events (`+eventColumns+`)
		VALUES (:event_id, :organizer_id, :title, :event_create, :start_register, :end_register,
		:start_event, :end_event, :max_attendee, :status_registration, :visibility,
		:allowed_email_domains, :min_age_requirement);`, e)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r EventRepo) Get(ctx context.Context, eventID string) (entity.Event, error) {
	return getEvent(ctx, r.db, eventID, false)
}

func getEvent(ctx context.Context, q sqlx.QueryerContext, eventID string, forUpdate bool) (entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var e entity.Event
	if err := sqlx.GetContext(ctx, q, &e, query, eventID); err != nil {
		return entity.Event{}, fmt.Errorf("getting event %s: %w", eventID, notFound(err))
	}
	return e, nil
}

func updateEvent(ctx context.Context, x sqlx.ExtContext, e entity.Event) error {
	res, err := sqlx.NamedExecContext(ctx, x, `UPDATE events SET
		title = :title,
		start_register = :start_register,
		end_register = :end_register,
		start_event = :start_event,
		end_event = :end_event,
		max_attendee = :max_attendee,
		status_registration = :status_registration,
		visibility = :visibility,
		allowed_email_domains = :allowed_email_domains,
		min_age_requirement = :min_age_requirement
		WHERE event_id = :event_id`, e)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("updating event %s: %w", e.ID, entity.ErrNotFound)
	}

	return nil
}
