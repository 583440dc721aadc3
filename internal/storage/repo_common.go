package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories are bound to it so Store.InTx can hand out transaction-scoped
// copies of the same repository set.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullString(raw sql.NullString) string {
	if !raw.Valid {
		return ""
	}
	return raw.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func readErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRead, err)
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrWrite, err)
}
