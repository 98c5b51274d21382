package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is an interface that both *sql.DB and *sql.Tx satisfy.
// This allows repositories to work with either a direct database connection
// or within a transaction context.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure *sql.DB and *sql.Tx implement DBTX at compile time
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// TokenStore persists token records. Implementations assign the record ID on
// Insert and may pre-filter ListActive, but callers must not rely on the
// ordering or filtering of the result.
type TokenStore interface {
	Insert(ctx context.Context, pending *PendingToken) (*TokenRecord, error)
	ListActive(ctx context.Context, userID string, activeAsOf time.Time) ([]*TokenRecord, error)
}

// Store is a TokenStore backed by a concrete storage engine.
type Store interface {
	TokenStore

	// Count returns the number of stored token records, expired or not.
	Count(ctx context.Context) (int64, error)
	// Ping checks connectivity for readiness probes.
	Ping(ctx context.Context) error
	Close() error
}
