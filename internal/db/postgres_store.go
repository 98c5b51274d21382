package db

import (
	"context"
	"time"
)

// PostgresStore serves tokens from PostgreSQL through a pooled connection.
type PostgresStore struct {
	manager *DatabaseManager
	Tokens  *TokenRepository
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(manager *DatabaseManager) *PostgresStore {
	return &PostgresStore{
		manager: manager,
		Tokens:  NewTokenRepository(manager.DB()),
	}
}

func (s *PostgresStore) Manager() *DatabaseManager {
	return s.manager
}

func (s *PostgresStore) Insert(ctx context.Context, pending *PendingToken) (*TokenRecord, error) {
	return s.Tokens.Insert(ctx, pending)
}

func (s *PostgresStore) ListActive(ctx context.Context, userID string, activeAsOf time.Time) ([]*TokenRecord, error) {
	return s.Tokens.ListActive(ctx, userID, activeAsOf)
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	return s.Tokens.Count(ctx)
}

// Ping checks database connectivity for health probes
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.manager.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	return s.manager.Close()
}
