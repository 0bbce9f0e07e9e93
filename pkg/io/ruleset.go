package io

import (
	"time"

	"github.com/matzehuels/stackrules/pkg/discovery"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// RuleSet is the persisted result of a discovery run.
type RuleSet struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Stats       discovery.Stats `json:"stats"`
	Rules       []rules.Rule    `json:"rules"`
	Failures    []Failure       `json:"failures,omitempty"`
}

// Failure records a dependency whose discovery failed.
type Failure struct {
	Dependency string `json:"dependency"`
	Registry   string `json:"registry"`
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
}

// NewRuleSet builds a document from a batch and its prioritized rules.
// ranked may be a filtered subset of b's rules; Stats still describe the
// whole batch.
func NewRuleSet(b discovery.BatchResult, ranked []rules.Rule) RuleSet {
	rs := RuleSet{
		GeneratedAt: time.Now().UTC(),
		Stats:       b.Stats,
		Rules:       ranked,
	}
	if rs.Rules == nil {
		rs.Rules = []rules.Rule{}
	}
	for _, r := range b.Failed {
		rs.Failures = append(rs.Failures, Failure{
			Dependency: r.Dependency.String(),
			Registry:   string(r.Dependency.Registry()),
			Error:      r.Error,
			Code:       string(r.ErrorCode),
		})
	}
	return rs
}
