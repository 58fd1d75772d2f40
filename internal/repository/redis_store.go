package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each collection under a prefixed string key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend constructs a Redis-backed store.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + name
}

// Get loads the raw value for key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Apply writes the batch within MULTI/EXEC.
func (b *RedisBackend) Apply(ctx context.Context, batch Batch) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range batch.Keys() {
			pipe.Set(ctx, b.key(key), batch.Puts[key], 0)
		}
		for _, key := range batch.Deletes {
			pipe.Del(ctx, b.key(key))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis apply batch: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
