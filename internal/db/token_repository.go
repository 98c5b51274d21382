package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// TokenRepository handles token persistence in PostgreSQL
type TokenRepository struct {
	db DBTX
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

// Insert stores a pending token. The database assigns the ID.
func (r *TokenRepository) Insert(ctx context.Context, pending *PendingToken) (*TokenRecord, error) {
	query := `
		INSERT INTO tokens (user_id, scopes, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		pending.UserID, pq.Array(pending.Scopes), pending.Token, pending.CreatedAt, pending.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert token: %w", err)
	}

	return newRecord(id, pending), nil
}

// ListActive returns the user's tokens expiring after activeAsOf, newest first.
func (r *TokenRepository) ListActive(ctx context.Context, userID string, activeAsOf time.Time) ([]*TokenRecord, error) {
	query := `
		SELECT id, user_id, scopes, token, created_at, expires_at
		FROM tokens
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, activeAsOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var records []*TokenRecord
	for rows.Next() {
		record := &TokenRecord{}
		var scopes pq.StringArray
		if err := rows.Scan(
			&record.ID, &record.UserID, &scopes, &record.Token, &record.CreatedAt, &record.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		record.Scopes = []string(scopes)
		record.CreatedAt = record.CreatedAt.UTC()
		record.ExpiresAt = record.ExpiresAt.UTC()
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}

	return records, nil
}

// Count returns the total number of stored tokens.
func (r *TokenRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return count, nil
}
