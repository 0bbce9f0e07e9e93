// Package pipeline runs the complete manifest → discover → prioritize
// pipeline shared by every entry point.
//
// # Stages
//
//  1. Read: collect dependencies from manifest files, inline manifest
//     content and explicitly named packages.
//  2. Discover: resolve each dependency's metadata and run the discovery
//     tiers with bounded parallelism (see package discovery).
//  3. Rank: prioritize the discovered rules, drop those below the
//     confidence floor and assemble a rule set document.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifests:    []string{"package.json"},
//	    GitHubToken:  token,
//	    GeminiAPIKey: key,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	io.WriteJSON(result.RuleSet, os.Stdout)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/discovery"
	"github.com/matzehuels/stackrules/pkg/integrations/gemini"
	rulesio "github.com/matzehuels/stackrules/pkg/io"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and library callers
// =============================================================================

const (
	// DefaultConcurrency is the number of dependencies discovered at once.
	DefaultConcurrency = discovery.DefaultConcurrency

	// DefaultReadmeBudget is the README prefix, in characters, sent to the model.
	DefaultReadmeBudget = discovery.DefaultReadmeBudget

	// DefaultModel is the Gemini model used for inference.
	DefaultModel = gemini.DefaultModel
)

// Per-call network timeouts.
const (
	DefaultRegistryTimeout = 10 * time.Second
	DefaultHomepageTimeout = 10 * time.Second
	DefaultForgeTimeout    = 15 * time.Second
	DefaultModelTimeout    = 60 * time.Second
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatMarkdown: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, markdown)", format)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Timeouts bounds each kind of network call.
type Timeouts struct {
	Registry time.Duration `toml:"registry" json:"registry,omitempty"`
	Homepage time.Duration `toml:"homepage" json:"homepage,omitempty"`
	Forge    time.Duration `toml:"forge" json:"forge,omitempty"`
	Model    time.Duration `toml:"model" json:"model,omitempty"`
}

// WithDefaults fills zero timeouts.
func (t Timeouts) WithDefaults() Timeouts {
	if t.Registry <= 0 {
		t.Registry = DefaultRegistryTimeout
	}
	if t.Homepage <= 0 {
		t.Homepage = DefaultHomepageTimeout
	}
	if t.Forge <= 0 {
		t.Forge = DefaultForgeTimeout
	}
	if t.Model <= 0 {
		t.Model = DefaultModelTimeout
	}
	return t
}

// InlineManifest is manifest content that does not live on disk, such as
// a manifest piped on stdin. Filename selects the reader.
type InlineManifest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Inputs
	Manifests []string          `json:"manifests,omitempty"`
	Inline    []InlineManifest  `json:"inline,omitempty"`
	Packages  []deps.Dependency `json:"packages,omitempty"`

	// Discovery
	Concurrency  int           `json:"concurrency,omitempty"`
	Refresh      bool          `json:"refresh,omitempty"`
	ReadmeBudget int           `json:"readme_budget,omitempty"`
	Model        string        `json:"model,omitempty"`
	Weights      rules.Weights `json:"weights,omitempty"`
	Timeouts     Timeouts      `json:"timeouts,omitempty"`
	ResultTTL    time.Duration `json:"result_ttl,omitempty"` // 0 keeps results until refreshed

	// Ranking
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// Runtime options (not serialized)
	Logger       *log.Logger            `json:"-"`
	GitHubToken  string                 `json:"-"`
	GeminiAPIKey string                 `json:"-"`
	OnResult     func(discovery.Result) `json:"-"`
	Registry     *deps.Registry         `json:"-"` // overrides the built-in fetchers
	Strategies   []discovery.Strategy   `json:"-"` // overrides the built-in tiers

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Manifests) == 0 && len(o.Inline) == 0 && len(o.Packages) == 0 {
		return fmt.Errorf("at least one manifest or package is required")
	}
	for _, m := range o.Inline {
		if m.Filename == "" {
			return fmt.Errorf("inline manifest needs a filename")
		}
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", o.Concurrency)
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return fmt.Errorf("min_confidence %.2f out of range [0,1]", o.MinConfidence)
	}
	if err := o.Weights.Validate(); err != nil {
		return err
	}

	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.ReadmeBudget <= 0 {
		o.ReadmeBudget = DefaultReadmeBudget
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	o.Weights = o.Weights.WithDefaults()
	o.Timeouts = o.Timeouts.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dependencies is the deduplicated input list.
	Dependencies []deps.Dependency

	// Batch holds every per-dependency result.
	Batch discovery.BatchResult

	// RuleSet is the ranked, filtered output document.
	RuleSet rulesio.RuleSet

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ReadTime     time.Duration
	DiscoverTime time.Duration
	Dropped      int // rules removed by the confidence floor or dedup
}
