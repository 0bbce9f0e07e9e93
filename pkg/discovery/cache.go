package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/observability"
	"github.com/matzehuels/stackrules/pkg/rules"
)

const resultKeyType = "result"

// CacheEntry is a persisted discovery outcome.
type CacheEntry struct {
	Metadata  deps.PackageMetadata `json:"metadata"`
	Rules     []rules.Rule         `json:"rules"`
	FetchedAt time.Time            `json:"fetchedAt"`
}

// ResultCache stores discovery outcomes keyed by registry, name and version
// on top of a byte-level [cache.Cache].
type ResultCache struct {
	backend cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration

	mu sync.Mutex // serializes writes
}

// NewResultCache wraps backend. A nil backend disables caching and a nil
// keyer selects the default key layout. ttl <= 0 keeps entries forever.
func NewResultCache(backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *ResultCache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &ResultCache{backend: backend, keyer: keyer, ttl: ttl}
}

// Key returns the storage key for a package version.
func (c *ResultCache) Key(registry deps.RegistryType, name, version string) string {
	return c.keyer.ResultKey(string(registry), name, version)
}

// Get returns the entry for a package version. A miss, including an entry
// that no longer decodes, is (nil, false, nil).
func (c *ResultCache) Get(ctx context.Context, registry deps.RegistryType, name, version string) (*CacheEntry, bool, error) {
	data, ok, err := c.backend.Get(ctx, c.Key(registry, name, version))
	if err != nil {
		return nil, false, fmt.Errorf("read result cache: %w", err)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, resultKeyType)
		return nil, false, nil
	}
	var e CacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		observability.Cache().OnCacheMiss(ctx, resultKeyType)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, resultKeyType)
	return &e, true, nil
}

// Put replaces the entry for a package version.
func (c *ResultCache) Put(ctx context.Context, registry deps.RegistryType, name, version string, e CacheEntry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backend.Set(ctx, c.Key(registry, name, version), data, c.ttl); err != nil {
		return fmt.Errorf("write result cache: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, resultKeyType, len(data))
	return nil
}

// Delete drops the entry for a package version.
func (c *ResultCache) Delete(ctx context.Context, registry deps.RegistryType, name, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Delete(ctx, c.Key(registry, name, version))
}
