package db

import "time"

// PendingToken is a token record that has not been assigned an ID yet.
type PendingToken struct {
	UserID    string
	Scopes    []string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenRecord is a persisted token. Records are never updated.
type TokenRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Scopes    []string  `json:"scopes"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsActive reports whether the record is still valid at t.
func (r *TokenRecord) IsActive(t time.Time) bool {
	return r.ExpiresAt.After(t)
}

func newRecord(id string, pending *PendingToken) *TokenRecord {
	return &TokenRecord{
		ID:        id,
		UserID:    pending.UserID,
		Scopes:    append([]string(nil), pending.Scopes...),
		Token:     pending.Token,
		CreatedAt: pending.CreatedAt,
		ExpiresAt: pending.ExpiresAt,
	}
}
