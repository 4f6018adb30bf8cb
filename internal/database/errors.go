package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique or primary key violation
// from any of the supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "ORA-00001") || // oracle
		strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "constraint failed: UNIQUE")
}
