package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps tokens in process memory. Records are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*TokenRecord
	order  []string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]*TokenRecord)}
}

func (s *MemoryStore) Insert(ctx context.Context, pending *PendingToken) (*TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := newRecord(uuid.New().String(), pending)

	s.mu.Lock()
	s.tokens[record.ID] = record
	s.order = append(s.order, record.ID)
	s.mu.Unlock()

	return copyRecord(record), nil
}

func (s *MemoryStore) ListActive(ctx context.Context, userID string, activeAsOf time.Time) ([]*TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var records []*TokenRecord
	for _, id := range s.order {
		record := s.tokens[id]
		if record.UserID == userID && record.IsActive(activeAsOf) {
			records = append(records, copyRecord(record))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.tokens)), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyRecord(r *TokenRecord) *TokenRecord {
	c := *r
	c.Scopes = append([]string(nil), r.Scopes...)
	return &c
}
