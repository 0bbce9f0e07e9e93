package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source identifies the discovery strategy that produced a rule.
type Source string

const (
	SourceRegistry   Source = "registry"   // Published with the package metadata
	SourceRepository Source = "repository" // Rule files in the source repository
	SourceDirect     Source = "direct"     // llms.txt on the project homepage
	SourceInference  Source = "inference"  // Generated from the README by a model
)

// Sources lists every rule source.
var Sources = []Source{SourceRegistry, SourceRepository, SourceDirect, SourceInference}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	for _, v := range Sources {
		if s == v {
			return true
		}
	}
	return false
}

// Content is the guidance itself.
type Content struct {
	Markdown string   `json:"markdown"`
	Examples []string `json:"examples,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Targeting narrows where a rule applies.
type Targeting struct {
	Languages  []string `json:"languages,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	Files      []string `json:"files,omitempty"`    // Glob patterns, e.g. "**/*.tsx"
	Contexts   []string `json:"contexts,omitempty"` // e.g. "testing", "review"
}

// Rule is a discovered usage rule.
//
// Rules are values: strategies create them, the orchestrator stamps them with
// the producing package identity, and nothing modifies them afterwards.
type Rule struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Confidence     float64   `json:"confidence"`
	Source         Source    `json:"source"`
	PackageName    string    `json:"packageName"`
	PackageVersion string    `json:"packageVersion"`
	Category       Category  `json:"category"`
	Content        Content   `json:"content"`
	Targeting      Targeting `json:"targeting"`
	DiscoveredAt   time.Time `json:"discoveredAt"`
}

// New creates a rule with a fresh ID, the current time and the confidence
// w assigns to src. The zero Weights selects the defaults.
func New(name string, src Source, cat Category, markdown string, w Weights) Rule {
	w = w.WithDefaults()
	return Rule{
		ID:           uuid.NewString(),
		Name:         name,
		Confidence:   w.For(src),
		Source:       src,
		Category:     cat,
		Content:      Content{Markdown: markdown},
		DiscoveredAt: time.Now().UTC(),
	}
}

// Stamp returns a copy of r attributed to the package name@version.
func (r Rule) Stamp(name, version string) Rule {
	r.PackageName = name
	r.PackageVersion = version
	return r
}

// Validate checks the fields every rule must carry.
func (r Rule) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("rule %q: missing id", r.Name)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("rule %s: missing name", r.ID)
	case r.Confidence < 0 || r.Confidence > 1:
		return fmt.Errorf("rule %q: confidence %.2f out of range [0,1]", r.Name, r.Confidence)
	case !r.Source.Valid():
		return fmt.Errorf("rule %q: unknown source %q", r.Name, r.Source)
	}
	return nil
}

// String returns "name (pkg@version)".
func (r Rule) String() string {
	if r.PackageVersion == "" {
		return fmt.Sprintf("%s (%s)", r.Name, r.PackageName)
	}
	return fmt.Sprintf("%s (%s@%s)", r.Name, r.PackageName, r.PackageVersion)
}
