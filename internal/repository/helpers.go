package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/goaltree/internal/db"
)

const dateLayout = "2006-01-02"

// parseTime parses an RFC3339 column, returning the zero time for empty values.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// timeOrNow formats t as RFC3339, substituting the current time when t is zero.
func timeOrNow(t time.Time) string {
	if t.IsZero() {
		return nowUTC()
	}
	return t.UTC().Format(time.RFC3339)
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// checkVersioned interprets the result of an UPDATE guarded by
// "WHERE id = ? AND version = ?". When no row matched it distinguishes a
// missing row (ErrNotFound) from a stale version (ErrConflict).
func checkVersioned(ctx context.Context, q db.DBTX, table, what, id string, expected int64, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking %s update: %w", what, err)
	}
	var current int64
	err = q.QueryRowContext(ctx, `SELECT version FROM `+table+` WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s version: %w", what, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%s %s is at version %d, not %d: %w", what, id, current, expected, ErrConflict)
	}
	return current, nil
}

// affectedOrNotFound maps a zero-row DELETE to ErrNotFound.
func affectedOrNotFound(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s delete: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
