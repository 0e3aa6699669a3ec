package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore implements WindowStore with INCR + EXPIRE. The expiry is
// set only on the first hit, making the window fixed rather than sliding.
type RedisWindowStore struct {
	client *redis.Client
}

func NewRedisWindowStore(client *redis.Client) *RedisWindowStore {
	return &RedisWindowStore{client: client}
}

func (s *RedisWindowStore) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("increment window %q: %w", key, err)
	}

	count := incr.Val()
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("set window expiry %q: %w", key, err)
		}
		return count, window, nil
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read window ttl %q: %w", key, err)
	}
	if ttl < 0 {
		// Key lost its expiry (e.g. a crashed first hit); reset it so the
		// window cannot live forever.
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("reset window expiry %q: %w", key, err)
		}
		ttl = window
	}
	return count, ttl, nil
}
