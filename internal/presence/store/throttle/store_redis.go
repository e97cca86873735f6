package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:throttle:"

// RedisThrottleStore holds the throttle window in Redis so that activity
// signals load-balanced across replicas still produce at most one persisted
// write per subject per window. Entries expire via TTL, so Evict is a no-op.
type RedisThrottleStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedis(client *redis.Client, window time.Duration) *RedisThrottleStore {
	return &RedisThrottleStore{client: client, window: window}
}

// TryAcquire uses SET NX with the window as TTL: exactly one replica wins the
// window, everyone else sees the existing key and throttles.
func (s *RedisThrottleStore) TryAcquire(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, now.UnixMilli(), window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle acquire: %w", err)
	}
	return ok, nil
}

// Touch resets the key's window unconditionally (force path). The TTL doubles
// as both throttle window and eviction, so a connect immediately followed by
// activity is throttled until the window elapses.
func (s *RedisThrottleStore) Touch(ctx context.Context, key string, now time.Time) error {
	if err := s.client.Set(ctx, keyPrefix+key, now.UnixMilli(), s.window).Err(); err != nil {
		return fmt.Errorf("throttle touch: %w", err)
	}
	return nil
}

// Evict is a no-op: Redis expires entries via TTL.
func (s *RedisThrottleStore) Evict(_ context.Context, _ time.Duration) (int, error) {
	return 0, nil
}

// Size scans the throttle keyspace. Used by the stats surface only, so the
// cost of a SCAN is acceptable.
func (s *RedisThrottleStore) Size(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 500).Result()
		if err != nil {
			return 0, fmt.Errorf("throttle size scan: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
