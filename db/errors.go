package db

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
)

const (
	codeUniqueViolation           = "23505"
	codeInvalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeUniqueViolation && pqErr.Constraint == constraint
}

// notFound maps missing rows, and IDs that are not valid UUIDs, to entity.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInvalidTextRepresentation {
		return entity.ErrNotFound
	}

	return err
}
