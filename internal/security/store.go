package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EphemeralStore holds short-lived verification material: SMS codes and
// WebAuthn challenges. Values expire on their own; Del is for single-use
// consumption. Backed by redis so multiple API instances share state.
type EphemeralStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

// RedisStore implements EphemeralStore on a redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put implements EphemeralStore.
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("security: store %s: %w", key, err)
	}
	return nil
}

// Get implements EphemeralStore.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("security: read %s: %w", key, err)
	}
	return value, true, nil
}

// Del implements EphemeralStore.
func (s *RedisStore) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("security: delete %s: %w", key, err)
	}
	return nil
}

var _ EphemeralStore = (*RedisStore)(nil)
