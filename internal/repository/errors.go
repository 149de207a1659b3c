package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by all repositories. Services classify
// store outcomes with errors.Is against these.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate row")
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique
// constraint violation. Check-then-insert sequences rely on this to
// detect the losing side of a race.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
