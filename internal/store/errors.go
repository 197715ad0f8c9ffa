package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned when an insert or update violates a unique
// index (duplicate slug or email). Callers treat it the same as a failed
// pre-check: two racing writers may both pass a uniqueness pre-check, but
// the index converts the loser's insert into this error instead of a
// silent duplicate.
var ErrConflict = errors.New("unique constraint violation")

// uniqueViolation is the PostgreSQL error code for unique index violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique-index error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
