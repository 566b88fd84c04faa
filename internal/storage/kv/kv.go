// Package kv defines the key-value persistence contract shared by every
// storefront store. Each store serializes its full state to JSON under a
// single well-known key on every mutation and hydrates from that key at
// construction time.
package kv

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("key not found")

// Store is a durable string-keyed byte store. Implementations must treat
// values as opaque and return ErrNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON reads key from the store and unmarshals it into v. A missing key
// is not an error: v is left untouched and found is false.
func LoadJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get %q", key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "unmarshal %q", key)
	}
	return true, nil
}

// SaveJSON marshals v and writes it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshal %q", key)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}
