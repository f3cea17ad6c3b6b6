package offlinequeue

import (
	"context"
	"fmt"
	"time"

	"github.com/mariaquintana/insurecrm-backend/pkg/redis"
)

const redisStoreTimeout = 5 * time.Second

// RedisStore backs the durable queue with Redis, letting several processes on
// one branch host share a device's queue. Values are written without TTL; the
// queue lives until explicitly rewritten.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an established Redis client.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

// Get returns the value stored at key, reporting a clean miss.
func (s *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisStoreTimeout)
	defer cancel()
	value, ok, err := s.client.GetOptional(ctx, s.client.OfflineQueueKey(key))
	if err != nil {
		return "", false, fmt.Errorf("read queue %s: %w", key, err)
	}
	return value, ok, nil
}

// Set writes the value under key.
func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisStoreTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.client.OfflineQueueKey(key), value, 0); err != nil {
		return fmt.Errorf("persist queue %s: %w", key, err)
	}
	return nil
}
