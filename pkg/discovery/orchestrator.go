package discovery

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
	"github.com/matzehuels/stackrules/pkg/observability"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// DefaultConcurrency is the number of dependencies discovered in parallel.
const DefaultConcurrency = 5

// Options configures an Orchestrator.
type Options struct {
	// Concurrency bounds DiscoverMany. Zero selects DefaultConcurrency.
	Concurrency int
	// Refresh bypasses the result cache and the tiers' HTTP caches on read;
	// fresh values are still written.
	Refresh bool
	// Cache stores results between runs. Nil disables caching.
	Cache *ResultCache
	// Logger receives tier and batch logs. Nil selects log.Default().
	Logger *log.Logger
	// OnResult, if set, is called once per dependency as it completes.
	// Calls are serialized.
	OnResult func(Result)
}

// WithDefaults fills zero values.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Cache == nil {
		o.Cache = NewResultCache(nil, nil, 0)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Orchestrator resolves dependencies to package metadata and runs the
// discovery tiers against each package. It never fails: every problem ends
// up in the Result of the dependency that caused it.
type Orchestrator struct {
	registry   *deps.Registry
	strategies []Strategy
	opts       Options

	mu sync.Mutex // serializes OnResult
}

// NewOrchestrator creates an orchestrator running strategies in the given
// order.
func NewOrchestrator(registry *deps.Registry, strategies []Strategy, opts Options) *Orchestrator {
	return &Orchestrator{registry: registry, strategies: strategies, opts: opts.WithDefaults()}
}

// Discover runs discovery for one dependency.
func (o *Orchestrator) Discover(ctx context.Context, dep deps.Dependency) (res Result) {
	start := time.Now()
	registry := dep.Registry()
	hooks := observability.Discovery()
	hooks.OnDiscoverStart(ctx, string(registry), dep.Name)
	defer func() {
		if p := recover(); p != nil {
			o.opts.Logger.Error("discovery panicked", "pkg", dep.Name, "panic", p, "stack", string(debug.Stack()))
			res = errorResult(dep, res.Metadata, errs.New(errs.ErrCodeInternal, "discovery panicked: %v", p))
		}
		var err error
		if res.Error != "" {
			err = errs.New(res.ErrorCode, "%s", res.Error)
		}
		hooks.OnDiscoverComplete(ctx, string(registry), dep.Name, len(res.Rules), time.Since(start), err)
		o.notify(res)
	}()

	if !o.opts.Refresh {
		entry, ok, err := o.opts.Cache.Get(ctx, registry, dep.Name, dep.Version)
		if err != nil {
			o.opts.Logger.Warn("result cache read failed", "pkg", dep.Name, "err", err)
		}
		if ok {
			meta := entry.Metadata
			return Result{Dependency: dep, Metadata: &meta, Rules: nonNil(entry.Rules), Cached: true, Tier: tierOf(entry.Rules)}
		}
	}

	meta, err := o.registry.FetchMetadata(ctx, registry, dep.Name, dep.Version, o.opts.Refresh)
	if err != nil {
		o.opts.Logger.Debug("metadata fetch failed", "pkg", dep.Name, "registry", registry, "err", err)
		return errorResult(dep, nil, err)
	}

	tierCtx := ctx
	if o.opts.Refresh {
		tierCtx = integrations.WithRefresh(ctx)
	}
	res = Result{Dependency: dep, Metadata: meta, Rules: []rules.Rule{}}
	for _, s := range o.strategies {
		if ctx.Err() != nil {
			break
		}
		tr, d := o.runTier(tierCtx, s, *meta)
		res.Trace = append(res.Trace, outcome(tr, d))
		if len(tr.Rules) > 0 {
			res.Tier = tr.Tier
			for _, r := range tr.Rules {
				res.Rules = append(res.Rules, r.Stamp(meta.Name, meta.Version))
			}
			break
		}
	}

	if ctx.Err() != nil {
		return res
	}
	if len(res.Rules) == 0 && transientFailure(res.Trace) {
		o.opts.Logger.Debug("not caching empty result after tier failure", "pkg", dep.Name)
		return res
	}
	if err := o.opts.Cache.Put(ctx, registry, dep.Name, dep.Version, CacheEntry{Metadata: *meta, Rules: res.Rules}); err != nil {
		o.opts.Logger.Warn("result cache write failed", "pkg", dep.Name, "err", err)
	}
	return res
}

// transientFailure reports whether a tier failed for a reason other than the
// resource being absent, so a retry could still find rules.
func transientFailure(trace []TierOutcome) bool {
	for _, t := range trace {
		if !t.Skipped && t.Error != "" && t.Code != errs.ErrCodeNotFound {
			return true
		}
	}
	return false
}

// runTier invokes one strategy, converting a panic into a tier failure.
func (o *Orchestrator) runTier(ctx context.Context, s Strategy, meta deps.PackageMetadata) (tr TierResult, d time.Duration) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			tr = failed(s.Tier(), errs.New(errs.ErrCodeInternal, "%s tier panicked: %v", s.Tier(), p))
		}
		d = time.Since(start)
		o.opts.Logger.Debug("tier complete",
			"pkg", meta.Name,
			"tier", tr.Tier,
			"rules", len(tr.Rules),
			"skipped", tr.Skipped,
			"err", tr.Err,
			"duration", d)
		observability.Discovery().OnTierComplete(ctx, meta.Name, string(tr.Tier), len(tr.Rules), tr.Skipped, d, tr.Err)
	}()

	tr = s.Discover(ctx, meta)
	if tr.Tier == "" {
		tr.Tier = s.Tier()
	}
	return tr, 0
}

// DiscoverMany runs Discover for every dependency with bounded parallelism.
// Results are in input order before partitioning.
func (o *Orchestrator) DiscoverMany(ctx context.Context, list []deps.Dependency) BatchResult {
	start := time.Now()
	results := make([]Result, len(list))

	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, dep := range list {
		g.Go(func() error {
			results[i] = o.Discover(ctx, dep)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	b := NewBatchResult(results)
	observability.Discovery().OnBatchComplete(ctx, b.Stats.Processed, b.Stats.Successful, b.Stats.Failed, b.Stats.TotalRules, time.Since(start))
	o.opts.Logger.Info("discovery complete",
		"processed", b.Stats.Processed,
		"successful", b.Stats.Successful,
		"failed", b.Stats.Failed,
		"rules", b.Stats.TotalRules,
		"duration", time.Since(start).Round(time.Millisecond))
	return b
}

func (o *Orchestrator) notify(r Result) {
	if o.opts.OnResult == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opts.OnResult(r)
}

// tierOf recovers the producing tier of cached rules from their source.
func tierOf(rs []rules.Rule) Tier {
	if len(rs) == 0 {
		return ""
	}
	switch rs[0].Source {
	case rules.SourceDirect:
		return TierHomepage
	case rules.SourceRepository:
		return TierRepository
	case rules.SourceInference:
		return TierInference
	}
	return ""
}

func nonNil(rs []rules.Rule) []rules.Rule {
	if rs == nil {
		return []rules.Rule{}
	}
	return rs
}
