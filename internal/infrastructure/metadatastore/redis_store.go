package metadatastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"portfolio_dashboard/internal/app/port"
)

const redisKeyPrefix = "portfolio:metadata:"

// RedisStore keeps values in redis under portfolio:metadata:<key>, without expiry.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) key(key string) string {
	return redisKeyPrefix + key
}

// Get implements port.MetadataStore.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET %s: %w", s.key(key), err)
	}
	return val, true, nil
}

// Set implements port.MetadataStore.
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", s.key(key), err)
	}
	return nil
}

var _ port.MetadataStore = (*RedisStore)(nil)
