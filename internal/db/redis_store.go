package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/madfam-org/ticketbooth/internal/logging"
)

// Key patterns
const (
	redisTokenKey     = "ticketbooth:token:%s"
	redisUserIndexKey = "ticketbooth:user:%s:tokens"
	redisTokenPattern = "ticketbooth:token:*"
)

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore keeps each token as a JSON value that Redis expires on its own,
// plus a per-user sorted set of token IDs scored by creation time.
type RedisStore struct {
	client redis.UniversalClient
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, config *RedisConfig, logger logging.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "Connected to Redis", logging.String("addr", config.Addr), logging.Int("db", config.DB))
	return rdb, nil
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func tokenKey(id string) string {
	return fmt.Sprintf(redisTokenKey, id)
}

func userIndexKey(userID string) string {
	return fmt.Sprintf(redisUserIndexKey, userID)
}

// recordTTL is the lifetime Redis should give the stored record. It is
// measured from CreatedAt, so the key can outlive ExpiresAt by the insert
// latency; ListActive filters on ExpiresAt and is authoritative.
func recordTTL(pending *PendingToken) time.Duration {
	return pending.ExpiresAt.Sub(pending.CreatedAt)
}

func (s *RedisStore) Insert(ctx context.Context, pending *PendingToken) (*TokenRecord, error) {
	record := newRecord(uuid.New().String(), pending)

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}

	ttl := recordTTL(pending)
	indexKey := userIndexKey(record.UserID)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(record.ID), data, ttl)
		pipe.ZAdd(ctx, indexKey, redis.Z{
			Score:  float64(record.CreatedAt.UnixMilli()),
			Member: record.ID,
		})
		// The index lives as long as its longest-lived token.
		pipe.ExpireNX(ctx, indexKey, ttl)
		pipe.ExpireGT(ctx, indexKey, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert token: %w", err)
	}

	return record, nil
}

func (s *RedisStore) ListActive(ctx context.Context, userID string, activeAsOf time.Time) ([]*TokenRecord, error) {
	indexKey := userIndexKey(userID)

	ids, err := s.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read token index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = tokenKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}

	records, stale, err := decodeRecords(ids, values, activeAsOf)
	if err != nil {
		return nil, err
	}

	if len(stale) > 0 {
		// Best effort; a failed cleanup is retried on the next read.
		_ = s.client.ZRem(ctx, indexKey, stale...).Err()
	}

	return records, nil
}

// decodeRecords turns MGET results into records active at activeAsOf. IDs
// whose record Redis already expired are returned as stale.
func decodeRecords(ids []string, values []interface{}, activeAsOf time.Time) ([]*TokenRecord, []interface{}, error) {
	var records []*TokenRecord
	var stale []interface{}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}

		record := &TokenRecord{}
		if err := json.Unmarshal([]byte(raw), record); err != nil {
			return nil, nil, fmt.Errorf("failed to decode token %s: %w", ids[i], err)
		}
		record.CreatedAt = record.CreatedAt.UTC()
		record.ExpiresAt = record.ExpiresAt.UTC()

		if record.IsActive(activeAsOf) {
			records = append(records, record)
		}
	}

	return records, stale, nil
}

// Count returns the number of records Redis still holds. Expired records are
// removed by Redis and are not counted.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	var count int64
	iter := s.client.Scan(ctx, 0, redisTokenPattern, 500).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
