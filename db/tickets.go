package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

const ticketColumns = `ticket_id, event_id, attendee_id, register_date, status, ticket_number,
	notification_state, cancellation_date, cancellation_reason`

type TicketRepo struct {
	db *sqlx.DB
}

func NewTicketRepo(db *sqlx.DB) TicketRepo {
	return TicketRepo{
		db: db,
	}
}

func (r TicketRepo) Get(ctx context.Context, ticketID string) (entity.Ticket, error) {
	return getTicket(ctx, r.db, ticketID, false)
}

func (r TicketRepo) CountActive(ctx context.Context, eventID string) (int, error) {
	return countActiveTickets(ctx, r.db, eventID)
}

// DueReminders lists active, confirmed tickets for events starting in [from, to).
// Tickets of cancelled events are left out.
func (r TicketRepo) DueReminders(ctx context.Context, from, to time.Time) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	err := sqlx.SelectContext(ctx, r.db, &tickets, `SELECT `+prefixed("t", ticketColumns)+`
		FROM tickets t
		JOIN events e ON e.event_id = t.event_id
		WHERE t.status = $1
		AND t.notification_state = $2
		AND e.start_event >= $3
		AND e.start_event < $4
		AND e.status_registration <> $5
		ORDER BY e.start_event, t.register_date`,
		entity.TicketActive, entity.NotificationConfirmed, from, to, entity.RegistrationCancelled)
	if err != nil {
		return nil, fmt.Errorf("querying due reminders: %w", err)
	}
	return tickets, nil
}

// TransitionNotificationState moves an active ticket from one notification state to
// another. It reports false when the ticket is no longer active or not in state from.
func (r TicketRepo) TransitionNotificationState(
	ctx context.Context,
	ticketID string,
	from, to entity.NotificationState,
) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET notification_state = $1
		WHERE ticket_id = $2 AND notification_state = $3 AND status = $4`,
		to, ticketID, from, entity.TicketActive)
	if err != nil {
		return false, fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return n == 1, nil
}

type ticketHolderRow struct {
	entity.Ticket
	Email string `db:"email"`
	Name  string `db:"name"`
}

func (r TicketRepo) ActiveHolders(ctx context.Context, eventID string) ([]entity.TicketHolder, error) {
	var rows []ticketHolderRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT `+prefixed("t", ticketColumns)+`, a.email, a.name
		FROM tickets t
		JOIN attendees a ON a.attendee_id = t.attendee_id
		WHERE t.event_id = $1 AND t.status = $2
		ORDER BY t.register_date`, eventID, entity.TicketActive)
	if err != nil {
		return nil, fmt.Errorf("querying ticket holders: %w", err)
	}

	holders := make([]entity.TicketHolder, 0, len(rows))
	for _, row := range rows {
		holders = append(holders, entity.TicketHolder{
			Ticket: row.Ticket,
			Email:  row.Email,
			Name:   row.Name,
		})
	}
	return holders, nil
}

func getTicket(ctx context.Context, q sqlx.QueryerContext, ticketID string, forUpdate bool) (entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var t entity.Ticket
	if err := sqlx.GetContext(ctx, q, &t, query, ticketID); err != nil {
		return entity.Ticket{}, fmt.Errorf("getting ticket %s: %w", ticketID, notFound(err))
	}
	return t, nil
}

func countActiveTickets(ctx context.Context, q sqlx.QueryerContext, eventID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM tickets
		WHERE event_id = $1 AND status = $2`, eventID, entity.TicketActive)
	if err != nil {
		return 0, fmt.Errorf("counting active tickets: %w", err)
	}
	return n, nil
}

func hasActiveTicket(ctx context.Context, q sqlx.QueryerContext, eventID, attendeeID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM tickets
		WHERE event_id = $1 AND attendee_id = $2 AND status = $3)`, eventID, attendeeID, entity.TicketActive)
	if err != nil {
		return false, fmt.Errorf("checking active ticket: %w", err)
	}
	return exists, nil
}

func ticketNumberExists(ctx context.Context, q sqlx.QueryerContext, number string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM tickets
		WHERE ticket_number = $1)`, number)
	if err != nil {
		return false, fmt.Errorf("checking ticket number: %w", err)
	}
	return exists, nil
}

// addTicket inserts under a savepoint so a unique violation leaves the
// surrounding transaction usable.
func addTicket(ctx context.Context, tx *sqlx.Tx, ticket entity.Ticket) error {
	if _, err := tx.ExecContext(ctx, `SAVEPOINT add_ticket`); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	_, err := tx.NamedExecContext(ctx, `INSERT INTO tickets (`+ticketColumns+`)
		VALUES (:ticket_id, :event_id, :attendee_id, :register_date, :status, :ticket_number,
		:notification_state, :cancellation_date, :cancellation_reason);`, ticket)
	if err != nil {
		if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT add_ticket`); rbErr != nil {
			return fmt.Errorf("rolling back to savepoint: %w", rbErr)
		}

		switch {
		case isUniqueViolation(err, ticketNumberConstraint):
			return entity.ErrTicketNumberTaken
		case isUniqueViolation(err, oneActiveTicketConstraint):
			return entity.ErrAlreadyRegistered
		}
		return fmt.Errorf("inserting ticket: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT add_ticket`); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}

	return nil
}

func updateTicketStatus(ctx context.Context, x sqlx.ExtContext, ticket entity.Ticket) error {
	res, err := sqlx.NamedExecContext(ctx, x, `UPDATE tickets SET
		status = :status,
		cancellation_date = :cancellation_date,
		cancellation_reason = :cancellation_reason
		WHERE ticket_id = :ticket_id`, ticket)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected exec result: %d rows affected", n)
	}

	return nil
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
