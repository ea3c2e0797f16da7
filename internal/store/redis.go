package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
)

// Redis is a Store backed by a redis server. Keys are namespaced by prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	if addr == "" {
		return nil, apperrors.NewConfigError("MISSING_ADDR", "redis store needs an address", nil)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, apperrors.NewStorageError("OPEN_FAILED", "failed to reach redis", err).WithContext("addr", addr)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStorageError("READ_FAILED", "failed to read key", err).WithContext("key", key)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return apperrors.NewStorageError("WRITE_FAILED", "failed to write key", err).WithContext("key", key)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
