// Package redis provides a Redis-backed kv.Store for running the storefront
// against shared external storage.
package redis

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/huandz/freshmart/internal/storage/kv"
)

var _ kv.Store = (*KV)(nil)

// keyPrefix namespaces storefront entries inside a shared Redis database.
const keyPrefix = "freshmart:"

// KV implements kv.Store on a Redis client. Values are stored without TTL:
// the storefront state is durable, not a cache.
type KV struct {
	client *redis.Client
}

// New wraps an existing client.
func New(client *redis.Client) *KV {
	return &KV{client: client}
}

// Open connects using a redis:// URL and verifies the connection.
func Open(ctx context.Context, url string) (*KV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return &KV{client: client}, nil
}

// Close releases the underlying client.
func (s *KV) Close() error {
	return s.client.Close()
}

// Ping verifies the connection, for readiness checks.
func (s *KV) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %q", key)
	}
	return data, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %q", key)
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrapf(err, "redis del %q", key)
	}
	return nil
}
