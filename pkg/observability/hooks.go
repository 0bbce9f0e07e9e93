// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumented packages (discovery, the result cache, the HTTP client) call
// the registered hooks; applications register implementations at startup.
// Nothing here depends on a metrics backend, and the defaults are no-ops.
//
//	observability.SetHTTPHooks(myHooks)
//	defer observability.Reset()
//
// Libraries emit events through the accessors:
//
//	observability.Discovery().OnDiscoverStart(ctx, "npm", "react")
//	// ... run tiers ...
//	observability.Discovery().OnDiscoverComplete(ctx, "npm", "react", 1, elapsed, nil)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// DiscoveryHooks receives events from the rule discovery orchestrator.
type DiscoveryHooks interface {
	OnDiscoverStart(ctx context.Context, registry, pkg string)
	OnDiscoverComplete(ctx context.Context, registry, pkg string, rules int, duration time.Duration, err error)

	// OnTierComplete fires after every tier that ran. skipped is true when the
	// tier declined to run (missing homepage, missing credential).
	OnTierComplete(ctx context.Context, pkg, tier string, rules int, skipped bool, duration time.Duration, err error)

	// OnBatchComplete fires once per DiscoverMany call.
	OnBatchComplete(ctx context.Context, processed, successful, failed, totalRules int, duration time.Duration)
}

// CacheHooks receives events from the HTTP and result caches. keyType is
// "http" or "result".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events for every outgoing registry, forge or homepage
// request.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError fires when no response arrived (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopDiscoveryHooks ignores every event.
type NoopDiscoveryHooks struct{}

func (NoopDiscoveryHooks) OnDiscoverStart(context.Context, string, string) {}
func (NoopDiscoveryHooks) OnDiscoverComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopDiscoveryHooks) OnTierComplete(context.Context, string, string, int, bool, time.Duration, error) {
}
func (NoopDiscoveryHooks) OnBatchComplete(context.Context, int, int, int, int, time.Duration) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook implementation. Reads are lock-free since
// hooks are consulted on every request.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }

func (s *slot[T]) reset() { s.p.Store(nil) }

var (
	discoverySlot = slot[DiscoveryHooks]{noop: NoopDiscoveryHooks{}}
	cacheSlot     = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot      = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetDiscoveryHooks registers h. A nil h is ignored.
func SetDiscoveryHooks(h DiscoveryHooks) {
	if h != nil {
		discoverySlot.set(h)
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

// Discovery returns the registered discovery hooks.
func Discovery() DiscoveryHooks { return discoverySlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op defaults.
func Reset() {
	discoverySlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
