package db

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "ticketbooth:token:abc", tokenKey("abc"))
	assert.Equal(t, "ticketbooth:user:u-1:tokens", userIndexKey("u-1"))
}

func TestRecordTTL(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	ttl := recordTTL(&PendingToken{CreatedAt: createdAt, ExpiresAt: createdAt.Add(90 * time.Minute)})
	assert.Equal(t, 90*time.Minute, ttl)
}

func TestDecodeRecords(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	encode := func(r *TokenRecord) string {
		data, err := json.Marshal(r)
		require.NoError(t, err)
		return string(data)
	}

	active := &TokenRecord{ID: "a", UserID: "u", Scopes: []string{"read"}, Token: "t-a", CreatedAt: now.Add(-time.Minute), ExpiresAt: now.Add(time.Hour)}
	expired := &TokenRecord{ID: "b", UserID: "u", Scopes: []string{"read"}, Token: "t-b", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now}

	records, stale, err := decodeRecords(
		[]string{"a", "b", "c"},
		[]interface{}{encode(active), encode(expired), nil},
		now,
	)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, []string{"read"}, records[0].Scopes)
	assert.True(t, records[0].ExpiresAt.Equal(active.ExpiresAt))
	assert.Equal(t, []interface{}{"c"}, stale)
}

func TestDecodeRecords_CorruptValue(t *testing.T) {
	_, _, err := decodeRecords([]string{"a"}, []interface{}{"{not json"}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode token a")
}

// TestRedisStore_Live runs against a real Redis when TICKETBOOTH_TEST_REDIS_ADDR is set.
func TestRedisStore_Live(t *testing.T) {
	addr := os.Getenv("TICKETBOOTH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TICKETBOOTH_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisStore(client)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	userID := "live-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	first, err := store.Insert(ctx, pendingAt(userID, now.Add(-time.Minute), time.Hour))
	require.NoError(t, err)
	second, err := store.Insert(ctx, pendingAt(userID, now, time.Hour))
	require.NoError(t, err)

	records, err := store.ListActive(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)

	ttl, err := client.TTL(ctx, tokenKey(first.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	records, err = store.ListActive(ctx, userID, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, records)
}
