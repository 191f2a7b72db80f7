// Package repository holds the SQL data access layer.  Repositories take
// a *sql.DB and run portable SQL (plain `?` placeholders, no dialect
// functions) so the same code serves MySQL in production and SQLite in
// development and tests.  Lookups scoped to a user return one of the
// sentinel errors below when the row is missing or owned by someone else.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrScheduleNotFound is returned when a schedule does not exist for the user.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrScheduleAlreadyCompleted is returned when completing a row that is
	// already completed (including a concurrent completion that won).
	ErrScheduleAlreadyCompleted = errors.New("schedule already completed")
	// ErrAssetNotFound is returned when an asset does not exist for the user.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrTypeNotFound is returned when a maintenance type does not exist for the user.
	ErrTypeNotFound = errors.New("maintenance type not found")
	// ErrRecordNotFound is returned when a maintenance record does not exist for the user.
	ErrRecordNotFound = errors.New("maintenance record not found")
)

// queryer is satisfied by both *sql.DB and *sql.Tx so that a statement can
// run standalone or as part of a caller's transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exists runs a SELECT 1 style query and reports whether it returned a row.
func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
