package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisBackendName = "redis"
	scanBatchSize    = 100
)

type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to the server at url (redis://host:port/db).
func NewRedisBackend(url string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &RedisBackend{client: redis.NewClient(opts)}, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) (bool, error) {
	n, err := b.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePattern walks the keyspace with SCAN MATCH and counts the keys DEL
// actually removed.
func (b *RedisBackend) DeletePattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	var cursor uint64

	for {
		keys, next, err := b.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %q: %w", pattern, err)
		}

		if len(keys) > 0 {
			n, err := b.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("delete matched keys: %w", err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	n, err := b.client.DBSize(ctx).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *RedisBackend) Name() string {
	return redisBackendName
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
