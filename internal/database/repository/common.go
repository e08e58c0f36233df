package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// querier is satisfied by *sql.DB and *sql.Tx so helpers can run inside or
// outside a caller's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
