// Package cache provides the byte-level key-value backends that persist HTTP
// responses and discovery results between runs.
//
// Every backend implements [Cache]. Callers never see backend-specific
// errors for a missing key: a miss is (nil, false, nil).
//
// Backends:
//   - [FileCache]: one JSON file per key under the XDG cache dir (CLI default)
//   - [MemoryCache]: bounded in-process LRU
//   - [RedisCache]: shared cache for multi-process deployments
//   - [MongoCache]: document store with TTL index
//   - [NullCache]: caching disabled (--no-cache)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes for key. A missing or expired key is
	// reported as (nil, false, nil), never as an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value atomically.
	// A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs for the two kinds of cached data.
const (
	// TTLHTTP bounds how long raw registry/forge responses are reused.
	TTLHTTP = 24 * time.Hour

	// TTLResults is zero: discovery results never expire on their own.
	// Callers that need fresh data pass a refresh flag instead.
	TTLResults time.Duration = 0
)
