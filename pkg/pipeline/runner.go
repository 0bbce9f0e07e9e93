package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/deps/languages"
	"github.com/matzehuels/stackrules/pkg/discovery"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations/gemini"
	"github.com/matzehuels/stackrules/pkg/integrations/github"
	rulesio "github.com/matzehuels/stackrules/pkg/io"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete read → discover → rank pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid options")
	}
	result := &Result{}

	// Stage 1: Read
	readStart := time.Now()
	list, err := ReadDependencies(opts)
	if err != nil {
		return nil, err
	}
	result.Dependencies = list
	result.Stats.ReadTime = time.Since(readStart)

	r.Logger.Info("read dependencies",
		"count", len(list),
		"manifests", len(opts.Manifests)+len(opts.Inline),
		"duration", result.Stats.ReadTime)

	// Stage 2: Discover
	discoverStart := time.Now()
	result.Batch = r.Orchestrator(ctx, opts).DiscoverMany(ctx, list)
	result.Stats.DiscoverTime = time.Since(discoverStart)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	// Stage 3: Rank
	ranked := rules.FilterMinConfidence(rules.Prioritize(result.Batch.Rules()), opts.MinConfidence)
	result.Stats.Dropped = result.Batch.TotalRules - len(ranked)
	result.RuleSet = rulesio.NewRuleSet(result.Batch, ranked)

	r.Logger.Info("ranked rules",
		"rules", len(ranked),
		"dropped", result.Stats.Dropped,
		"min_confidence", opts.MinConfidence)

	return result, nil
}

// Orchestrator builds the discovery orchestrator for opts. opts must have
// been validated.
func (r *Runner) Orchestrator(ctx context.Context, opts Options) *discovery.Orchestrator {
	registry := opts.Registry
	if registry == nil {
		registry = languages.NewRegistry(deps.Options{
			Cache:    r.Cache,
			Keyer:    r.Keyer,
			CacheTTL: cache.TTLHTTP,
			Timeout:  opts.Timeouts.Registry,
		})
	}
	strategies := opts.Strategies
	if strategies == nil {
		strategies = r.Strategies(ctx, opts)
	}
	return discovery.NewOrchestrator(registry, strategies, discovery.Options{
		Concurrency: opts.Concurrency,
		Refresh:     opts.Refresh,
		Cache:       discovery.NewResultCache(r.Cache, r.Keyer, resultTTL(opts.ResultTTL)),
		Logger:      opts.Logger,
		OnResult:    opts.OnResult,
	})
}

// Strategies builds the three discovery tiers. Without a Gemini key the
// inference tier is still present but skips every package.
func (r *Runner) Strategies(ctx context.Context, opts Options) []discovery.Strategy {
	web := discovery.NewWebClient(r.Cache, opts.Timeouts.Homepage)
	web.SetKeyer(r.Keyer)

	forge := github.NewContentClient(r.Cache, opts.GitHubToken, cache.TTLHTTP)
	forge.SetTimeout(opts.Timeouts.Forge)
	forge.SetKeyer(r.Keyer)
	if opts.GitHubToken == "" {
		r.Logger.Debug("no GitHub token; repository scans are limited to 60 requests/hour")
	}

	var model discovery.Completer
	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:  opts.GeminiAPIKey,
		Model:   opts.Model,
		Timeout: opts.Timeouts.Model,
	})
	switch {
	case errs.Is(err, errs.ErrCodeCredentialMissing):
		r.Logger.Debug("no Gemini API key; inference tier disabled")
	case err != nil:
		r.Logger.Warn("inference tier disabled", "err", err)
	default:
		model = client
	}

	return []discovery.Strategy{
		discovery.NewHomepageStrategy(web, opts.Weights),
		discovery.NewRepositoryStrategy(forge, opts.Weights),
		discovery.NewInferenceStrategy(forge, model, opts.ReadmeBudget, opts.Weights),
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func resultTTL(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return cache.TTLResults
}
