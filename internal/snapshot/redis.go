package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trade-journal-go/internal/models"
)

const redisKeyPrefix = "trade-journal:snapshot:"

// snapshotTTL bounds how long an entry can outlive a missed invalidation,
// e.g. after a crash between the balance commit and the cache delete.
const snapshotTTL = 24 * time.Hour

// RedisStore caches snapshots in Redis so multiple server instances share
// one cache.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(accountID, period string) string {
	return redisKeyPrefix + accountID + ":" + period
}

func (s *RedisStore) Get(ctx context.Context, accountID, period string) (models.PerformanceMetrics, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(accountID, period)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PerformanceMetrics{}, false, nil
	}
	if err != nil {
		return models.PerformanceMetrics{}, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var metrics models.PerformanceMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		// Treat undecodable payloads as a miss; the caller recomputes.
		return models.PerformanceMetrics{}, false, nil
	}
	return metrics, true, nil
}

func (s *RedisStore) Put(ctx context.Context, accountID, period string, metrics models.PerformanceMetrics) error {
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(accountID, period), raw, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, accountID string) error {
	pattern := redisKeyPrefix + accountID + ":*"
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshots: %w", err)
	}
	return nil
}
