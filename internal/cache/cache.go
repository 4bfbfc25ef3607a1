package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or its entry has expired.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented store with per-entry TTL. Source adapters treat
// it as best effort: a lookup error is handled like a miss, and a failed
// write never fails the surrounding fetch.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
