package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// codeForeignKeyViolation is the PostgreSQL error code for foreign key
// violations.
const codeForeignKeyViolation = "23503"

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key
// violation error, e.g. a child row referencing a course that was never stored.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// ConstraintName returns the violated constraint's name when the error is a
// PostgreSQL constraint violation, or "" otherwise.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
