package rules

import (
	"reflect"
	"testing"
)

func rule(name, pkg string, conf float64, cat Category) Rule {
	return Rule{ID: name + "/" + pkg, Name: name, PackageName: pkg, Confidence: conf, Category: cat, Source: SourceRepository}
}

func names(rs []Rule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.PackageName + ":" + r.Name
	}
	return out
}

func TestPrioritize(t *testing.T) {
	in := []Rule{
		rule("docs", "react", 0.7, CategoryDocumentation),
		rule("llms", "react", 0.9, CategoryDocumentation),
		rule("hooks", "react", 0.7, CategoryFramework),
		rule("testing", "vitest", 0.7, CategoryTesting),
		rule("docs", "react", 0.5, CategoryFramework),
		rule("inferred", "lodash", 0.5, "mystery"),
		rule("readme", "lodash", 0.5, CategoryDocumentation),
	}

	got := names(Prioritize(in))
	want := []string{
		"react:llms",
		"react:hooks",
		"vitest:testing",
		"react:docs",
		"lodash:readme",
		"lodash:inferred",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Prioritize() = %v, want %v", got, want)
	}
}

func TestPrioritizeKeepsHighestRankedDuplicate(t *testing.T) {
	in := []Rule{
		rule("docs", "react", 0.5, CategoryDocumentation),
		rule("docs", "react", 0.9, CategoryDocumentation),
		rule("docs", "vue", 0.5, CategoryDocumentation),
	}
	got := Prioritize(in)
	if len(got) != 2 {
		t.Fatalf("got %d rules, want 2", len(got))
	}
	if got[0].Confidence != 0.9 || got[0].PackageName != "react" {
		t.Errorf("first = %+v, want the 0.9 react rule", got[0])
	}
}

func TestPrioritizeIdempotent(t *testing.T) {
	in := []Rule{
		rule("a", "x", 0.5, CategoryTooling),
		rule("b", "x", 0.9, CategoryBuild),
		rule("a", "x", 0.7, CategoryTooling),
		rule("c", "y", 0.7, CategoryLanguage),
		rule("d", "y", 0.7, CategoryLanguage),
	}
	once := Prioritize(in)
	twice := Prioritize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Prioritize not idempotent:\n once  %v\n twice %v", names(once), names(twice))
	}
}

func TestPrioritizeDeterministic(t *testing.T) {
	var in []Rule
	cats := []Category{CategoryFramework, CategoryTesting, CategoryDocumentation}
	for i := range 50 {
		in = append(in, rule(string(rune('a'+i%26)), "pkg", float64(i%3)/2, cats[i%3]))
	}
	first := names(Prioritize(in))
	for range 20 {
		if got := names(Prioritize(in)); !reflect.DeepEqual(got, first) {
			t.Fatalf("Prioritize output changed between runs")
		}
	}
}

func TestPrioritizeDoesNotMutateInput(t *testing.T) {
	in := []Rule{
		rule("a", "x", 0.5, CategoryTooling),
		rule("b", "x", 0.9, CategoryBuild),
		rule("b", "x", 0.9, CategoryBuild),
	}
	snapshot := append([]Rule(nil), in...)
	Prioritize(in)
	if !reflect.DeepEqual(in, snapshot) {
		t.Error("Prioritize mutated its input")
	}
}

func TestPrioritizeEmpty(t *testing.T) {
	if got := Prioritize(nil); len(got) != 0 {
		t.Errorf("Prioritize(nil) = %v", got)
	}
}

func TestFilterMinConfidence(t *testing.T) {
	in := []Rule{
		rule("a", "x", 0.9, CategoryTooling),
		rule("b", "x", 0.5, CategoryTooling),
		rule("c", "x", 0.7, CategoryTooling),
	}
	got := names(FilterMinConfidence(in, 0.7))
	if want := []string{"x:a", "x:c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilterMinConfidence = %v, want %v", got, want)
	}
	if len(FilterMinConfidence(in, 0)) != 3 {
		t.Error("min 0 should keep everything")
	}
}

func TestNew(t *testing.T) {
	w := DefaultWeights()
	a := New("react llms.txt", SourceDirect, CategoryDocumentation, "# React", w)
	b := New("react llms.txt", SourceDirect, CategoryDocumentation, "# React", w)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs must be unique: %q %q", a.ID, b.ID)
	}
	if a.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", a.Confidence)
	}
	if a.DiscoveredAt.IsZero() {
		t.Error("DiscoveredAt not set")
	}
	if r := New("x", SourceDirect, CategoryDocumentation, "x", Weights{}); r.Confidence != DefaultDirectWeight {
		t.Errorf("zero Weights: Confidence = %v, want %v", r.Confidence, DefaultDirectWeight)
	}
	if r := New("x", SourceRepository, CategoryDocumentation, "x", Weights{Direct: 1}); r.Confidence != 0 {
		t.Errorf("explicit zero weight: Confidence = %v, want 0", r.Confidence)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	s := a.Stamp("react", "18.2.0")
	if s.PackageName != "react" || s.PackageVersion != "18.2.0" || a.PackageName != "" {
		t.Errorf("Stamp: got %+v, original %+v", s, a)
	}
	if s.String() != "react llms.txt (react@18.2.0)" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestRuleValidate(t *testing.T) {
	base := New("n", SourceInference, CategoryFramework, "x", DefaultWeights())
	tests := []struct {
		name   string
		mutate func(*Rule)
	}{
		{"missing id", func(r *Rule) { r.ID = "" }},
		{"blank name", func(r *Rule) { r.Name = " " }},
		{"confidence", func(r *Rule) { r.Confidence = 1.2 }},
		{"source", func(r *Rule) { r.Source = "gossip" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			if r.Validate() == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWeights(t *testing.T) {
	if w := (Weights{}).WithDefaults(); w != DefaultWeights() {
		t.Errorf("zero WithDefaults = %+v", w)
	}
	// An explicit zero disables a source instead of falling back.
	w := Weights{Direct: 0.95, Repository: 0, Inference: 0.5, Registry: 0.8}.WithDefaults()
	if w.Direct != 0.95 || w.Repository != 0 || w.Inference != 0.5 {
		t.Errorf("WithDefaults = %+v", w)
	}
	if w.For("unknown") != 0 {
		t.Error("unknown source should weigh 0")
	}
	if err := (Weights{Direct: 1.5}).WithDefaults().Validate(); err == nil {
		t.Error("expected error for weight > 1")
	}
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestCategoryFromFilename(t *testing.T) {
	tests := []struct {
		name       string
		frameworks []string
		want       Category
	}{
		{"testing.md", nil, CategoryTesting},
		{".vibe/unit-tests.mdc", nil, CategoryTesting},
		{"ci.md", nil, CategoryBuild},
		{"build_steps.txt", nil, CategoryBuild},
		{"lint-rules.mdc", nil, CategoryTooling},
		{"formatting.md", nil, CategoryTooling},
		{"typescript.mdc", nil, CategoryLanguage},
		{"react.mdc", []string{"react"}, CategoryFramework},
		{"React-Hooks.md", []string{"react"}, CategoryFramework},
		{"circle.md", nil, CategoryDocumentation},
		{"CLAUDE.md", nil, CategoryDocumentation},
		{".cursorrules", nil, CategoryDocumentation},
	}
	for _, tt := range tests {
		if got := CategoryFromFilename(tt.name, tt.frameworks...); got != tt.want {
			t.Errorf("CategoryFromFilename(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestCategoryPriority(t *testing.T) {
	order := []Category{CategoryFramework, CategoryLanguage, CategoryTesting, CategoryBuild, CategoryTooling, CategoryDocumentation}
	for i := 1; i < len(order); i++ {
		if order[i-1].Priority() <= order[i].Priority() {
			t.Errorf("%s should outrank %s", order[i-1], order[i])
		}
	}
	if Category("other").Priority() != 0 || Category("other").Valid() {
		t.Error("unknown category should have priority 0")
	}
}
