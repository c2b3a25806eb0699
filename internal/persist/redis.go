package persist

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage stores each key as a plain string value. With a zero base
// TTL values never expire.
type RedisStorage struct {
	client  *redis.Client
	prefix  string
	baseTTL time.Duration
	jitter  time.Duration
}

type RedisOption func(*RedisStorage)

// WithTTL expires values after base plus a random jitter in [0, jitter).
func WithTTL(base, jitter time.Duration) RedisOption {
	return func(r *RedisStorage) {
		r.baseTTL = base
		r.jitter = jitter
	}
}

func NewRedisStorage(client *redis.Client, opts ...RedisOption) *RedisStorage {
	r := &RedisStorage{
		client: client,
		prefix: "storefront",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) ttl() time.Duration {
	if r.baseTTL <= 0 {
		return 0
	}
	if r.jitter <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + time.Duration(rand.Int63n(int64(r.jitter)))
}

func (r *RedisStorage) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
