package discovery

import (
	"fmt"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// Result is the discovery outcome for one dependency. An error result
// carries no rules; its Metadata may still be set.
type Result struct {
	Dependency deps.Dependency       `json:"dependency"`
	Metadata   *deps.PackageMetadata `json:"metadata,omitempty"`
	Rules      []rules.Rule          `json:"rules"`
	Error      string                `json:"error,omitempty"`
	ErrorCode  errs.Code             `json:"errorCode,omitempty"`
	Cached     bool                  `json:"cached,omitempty"`
	Tier       Tier                  `json:"tier,omitempty"`
	Trace      []TierOutcome         `json:"trace,omitempty"`
}

// OK reports whether discovery found at least one rule.
func (r Result) OK() bool { return r.Error == "" && len(r.Rules) > 0 }

func errorResult(dep deps.Dependency, meta *deps.PackageMetadata, err error) Result {
	return Result{
		Dependency: dep,
		Metadata:   meta,
		Rules:      []rules.Rule{},
		Error:      err.Error(),
		ErrorCode:  errs.Classify(err),
	}
}

// Stats summarizes a batch.
type Stats struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	TotalRules int `json:"totalRules"`
}

// BatchResult partitions the results of a batch. Results with neither rules
// nor an error count only toward Stats.Processed.
type BatchResult struct {
	Successful []Result `json:"successful"`
	Failed     []Result `json:"failed"`
	TotalRules int      `json:"totalRules"`
	Stats      Stats    `json:"stats"`
}

// NewBatchResult partitions results.
func NewBatchResult(results []Result) BatchResult {
	b := BatchResult{Successful: []Result{}, Failed: []Result{}}
	for _, r := range results {
		b.Stats.Processed++
		switch {
		case r.Error != "":
			b.Failed = append(b.Failed, r)
		case len(r.Rules) > 0:
			b.Successful = append(b.Successful, r)
			b.TotalRules += len(r.Rules)
		}
	}
	b.Stats.Successful = len(b.Successful)
	b.Stats.Failed = len(b.Failed)
	b.Stats.TotalRules = b.TotalRules
	return b
}

// Rules flattens the rules of all successful results.
func (b BatchResult) Rules() []rules.Rule {
	out := make([]rules.Rule, 0, b.TotalRules)
	for _, r := range b.Successful {
		out = append(out, r.Rules...)
	}
	return out
}

// String summarizes the result for log output.
func (r Result) String() string {
	if r.Error != "" {
		return fmt.Sprintf("%s: %s", r.Dependency, r.Error)
	}
	return fmt.Sprintf("%s: %d rules", r.Dependency, len(r.Rules))
}
