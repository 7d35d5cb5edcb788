package interval

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the guard with a Redis instance. SETNX with a TTL makes
// the claim atomic, so concurrent senders cannot both pass the check.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance at addr (host:port) using
// the given logical database.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
	}
}

// SetIfAbsent implements Store.
func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
