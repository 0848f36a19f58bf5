package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each key as a Redis string under a namespace prefix.
// Processes sharing a namespace see each other's writes; the last one wins.
type RedisBackend struct {
	client    *redis.Client
	namespace string
}

// NewRedisBackend returns a backend that prefixes keys with namespace + ":".
func NewRedisBackend(client *redis.Client, namespace string) *RedisBackend {
	return &RedisBackend{client: client, namespace: namespace}
}

func (b *RedisBackend) key(k string) string {
	if b.namespace == "" {
		return k
	}
	return b.namespace + ":" + k
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.Get(ctx, b.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, b.key(key), value, 0).Err()
}

func (b *RedisBackend) Remove(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.key(key)).Err()
}

// Close is a no-op; the client is owned by the caller.
func (b *RedisBackend) Close() error {
	return nil
}
