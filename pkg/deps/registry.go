package deps

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// Registry is an explicit, immutable set of fetchers. It is built once at
// startup and handed to whatever needs metadata; there is no global registry.
type Registry struct {
	fetchers []Fetcher
}

// NewRegistry creates a Registry that consults fetchers in order.
func NewRegistry(fetchers ...Fetcher) *Registry {
	fs := make([]Fetcher, 0, len(fetchers))
	for _, f := range fetchers {
		if f != nil {
			fs = append(fs, f)
		}
	}
	return &Registry{fetchers: fs}
}

// For returns the first fetcher that can serve name in registry t.
func (r *Registry) For(name string, t RegistryType) (Fetcher, bool) {
	if r == nil {
		return nil, false
	}
	for _, f := range r.fetchers {
		if f.CanFetch(name, t) {
			return f, true
		}
	}
	return nil, false
}

// Len returns the number of registered fetchers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fetchers)
}

// FetchMetadata selects a fetcher for t and fetches name@version through it.
// Returns an INVALID_PACKAGE error for names unsafe to put in a URL and an
// UNSUPPORTED error when no fetcher serves t.
func (r *Registry) FetchMetadata(ctx context.Context, t RegistryType, name, version string, refresh bool) (*PackageMetadata, error) {
	if err := errs.ValidatePackageName(name); err != nil {
		return nil, err
	}
	f, ok := r.For(name, t)
	if !ok {
		return nil, errs.New(errs.ErrCodeUnsupported, "no fetcher for %s package %s", t, name)
	}
	meta, err := f.FetchMetadata(ctx, name, version, refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch %s package %s: %w", t, name, err)
	}
	return meta, nil
}
