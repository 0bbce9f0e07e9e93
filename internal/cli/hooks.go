package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackrules/pkg/observability"
)

// runMetrics counts network and cache activity during one discover run and
// traces every request at debug level.
type runMetrics struct {
	logger *log.Logger

	requests, failures atomic.Int64
	hits, misses       atomic.Int64
}

// registerMetrics installs m as the HTTP and cache hooks. The returned
// function restores the defaults.
func registerMetrics(logger *log.Logger) (*runMetrics, func()) {
	m := &runMetrics{logger: logger}
	observability.SetHTTPHooks(m)
	observability.SetCacheHooks(m)
	return m, observability.Reset
}

func (m *runMetrics) OnRequest(context.Context, string, string, string) {
	m.requests.Add(1)
}

func (m *runMetrics) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	m.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (m *runMetrics) OnError(_ context.Context, method, host, path string, err error) {
	m.failures.Add(1)
	m.logger.Debug("http failed", "method", method, "host", host, "path", path, "err", err)
}

func (m *runMetrics) OnCacheHit(context.Context, string) { m.hits.Add(1) }

func (m *runMetrics) OnCacheMiss(context.Context, string) { m.misses.Add(1) }

func (m *runMetrics) OnCacheSet(context.Context, string, int) {}

// keyvals returns the counters as logger key/value pairs.
func (m *runMetrics) keyvals() []any {
	return []any{
		"requests", m.requests.Load(),
		"request_errors", m.failures.Load(),
		"cache_hits", m.hits.Load(),
		"cache_misses", m.misses.Load(),
	}
}

var (
	_ observability.HTTPHooks  = (*runMetrics)(nil)
	_ observability.CacheHooks = (*runMetrics)(nil)
)
