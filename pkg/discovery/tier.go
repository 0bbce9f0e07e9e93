package discovery

import (
	"context"
	"time"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// Tier names a discovery strategy.
type Tier string

const (
	TierHomepage   Tier = "homepage"
	TierRepository Tier = "repository"
	TierInference  Tier = "inference"
)

// Strategy is one discovery tier.
type Strategy interface {
	Tier() Tier
	// Discover looks for rules for meta. It must not panic; the orchestrator
	// recovers anyway and reports a panic as a tier failure.
	Discover(ctx context.Context, meta deps.PackageMetadata) TierResult
}

// TierResult is the outcome of one strategy invocation.
//
// Exactly one of three shapes: rules found (Rules non-empty, Err nil);
// nothing found or the tier failed (Rules empty, Err optional); or the tier
// declined to run (Skipped, with Err explaining why, e.g. a missing
// credential).
type TierResult struct {
	Tier    Tier
	Rules   []rules.Rule
	Err     error
	Skipped bool
}

func found(t Tier, rs []rules.Rule) TierResult { return TierResult{Tier: t, Rules: rs} }

func failed(t Tier, err error) TierResult { return TierResult{Tier: t, Err: err} }

func skipped(t Tier, code errs.Code, format string, args ...any) TierResult {
	return TierResult{Tier: t, Skipped: true, Err: errs.New(code, format, args...)}
}

// TierOutcome is the serializable trace of a TierResult.
type TierOutcome struct {
	Tier     Tier          `json:"tier"`
	Rules    int           `json:"rules"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Code     errs.Code     `json:"code,omitempty"`
	Duration time.Duration `json:"duration"`
}

func outcome(r TierResult, d time.Duration) TierOutcome {
	o := TierOutcome{Tier: r.Tier, Rules: len(r.Rules), Skipped: r.Skipped, Duration: d}
	if r.Err != nil {
		o.Error = r.Err.Error()
		o.Code = errs.Classify(r.Err)
	}
	return o
}
