package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: key not found")

// Store represents a TTL-based key-value cache that can be backed by memory,
// Redis, or any other KV store. Implementations must report Get on a missing
// or expired key as ErrNotFound.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// DeleteMany removes the given keys, batching round-trips where the
	// backend allows it, and reports how many existed. Missing keys are not
	// an error.
	DeleteMany(ctx context.Context, keys ...string) (int, error)

	// Keys returns every key matching pattern. Patterns use the backend's
	// glob syntax; callers in this codebase only rely on a trailing "*".
	Keys(ctx context.Context, pattern string) ([]string, error)
}
