package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

type AttendeeRepo struct {
	db *sqlx.DB
}

func NewAttendeeRepo(db *sqlx.DB) AttendeeRepo {
	return AttendeeRepo{
		db: db,
	}
}

func (r AttendeeRepo) Add(ctx context.Context, a entity.Attendee) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO attendees
		(attendee_id, email, name, birth_date)
		VALUES (:attendee_id, :email, :name, :birth_date);`, a)
	if isUniqueViolation(err, attendeeEmailConstraint) {
		return entity.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("inserting attendee: %w", err)
	}
	return nil
}

func (r AttendeeRepo) Get(ctx context.Context, attendeeID string) (entity.Attendee, error) {
	return getAttendee(ctx, r.db, attendeeID)
}

func getAttendee(ctx context.Context, q sqlx.QueryerContext, attendeeID string) (entity.Attendee, error) {
	var a entity.Attendee
	err := sqlx.GetContext(ctx, q, &a, `SELECT attendee_id, email, name, birth_date
		FROM attendees WHERE attendee_id = $1`, attendeeID)
	if err != nil {
		return entity.Attendee{}, fmt.Errorf("getting attendee %s: %w", attendeeID, notFound(err))
	}
	return a, nil
}

type OrganizerRepo struct {
	db *sqlx.DB
}

func NewOrganizerRepo(db *sqlx.DB) OrganizerRepo {
	return OrganizerRepo{
		db: db,
	}
}

func (r OrganizerRepo) Add(ctx context.Context, o entity.Organizer) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO organizers
		(organizer_id, user_id, name)
		VALUES (:organizer_id, :user_id, :name);`, o)
	if err != nil {
		return fmt.Errorf("inserting organizer: %w", err)
	}
	return nil
}

// FindByUser reports found=false, without an error, when the user is not an organizer.
func (r OrganizerRepo) FindByUser(ctx context.Context, userID string) (entity.Organizer, bool, error) {
	return findOrganizerByUser(ctx, r.db, userID)
}

func findOrganizerByUser(ctx context.Context, q sqlx.QueryerContext, userID string) (entity.Organizer, bool, error) {
	var o entity.Organizer
	err := sqlx.GetContext(ctx, q, &o, `SELECT organizer_id, user_id, name
		FROM organizers WHERE user_id = $1`, userID)
	if errors.Is(notFound(err), entity.ErrNotFound) {
		return entity.Organizer{}, false, nil
	}
	if err != nil {
		return entity.Organizer{}, false, fmt.Errorf("getting organizer for user %s: %w", userID, err)
	}
	return o, true, nil
}
