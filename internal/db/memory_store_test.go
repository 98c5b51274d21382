package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingAt(userID string, createdAt time.Time, ttl time.Duration) *PendingToken {
	return &PendingToken{
		UserID:    userID,
		Scopes:    []string{"read"},
		Token:     userID + "-" + createdAt.Format(time.RFC3339Nano),
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(ttl),
	}
}

func TestMemoryStore_InsertAssignsUniqueIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	a, err := store.Insert(ctx, pendingAt("u", now, time.Hour))
	require.NoError(t, err)
	b, err := store.Insert(ctx, pendingAt("u", now, time.Hour))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMemoryStore_ListActiveFiltersAndOrders(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.Insert(ctx, pendingAt("u", base, time.Hour))
	require.NoError(t, err)
	_, err = store.Insert(ctx, pendingAt("u", base.Add(time.Minute), time.Hour))
	require.NoError(t, err)
	_, err = store.Insert(ctx, pendingAt("u", base.Add(-2*time.Hour), time.Hour))
	require.NoError(t, err)
	_, err = store.Insert(ctx, pendingAt("other", base, time.Hour))
	require.NoError(t, err)

	records, err := store.ListActive(ctx, "u", base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, base.Add(time.Minute), records[0].CreatedAt)
	assert.Equal(t, base, records[1].CreatedAt)
}

func TestMemoryStore_ExpiryBoundaryIsExclusive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.Insert(ctx, pendingAt("u", base, time.Minute))
	require.NoError(t, err)

	records, err := store.ListActive(ctx, "u", base.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	inserted, err := store.Insert(ctx, pendingAt("u", now, time.Hour))
	require.NoError(t, err)
	inserted.Scopes[0] = "mutated"

	records, err := store.ListActive(ctx, "u", now)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "read", records[0].Scopes[0])
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Insert(ctx, pendingAt("u", time.Now(), time.Hour))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.ListActive(ctx, "u", time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ConcurrentInserts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Insert(ctx, pendingAt("u", now, time.Hour))
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}
