package cli

import (
	"path/filepath"
	"strings"
	"testing"

	rulesio "github.com/matzehuels/stackrules/pkg/io"
	"github.com/matzehuels/stackrules/pkg/rules"
)

func saveRuleSet(t *testing.T) string {
	t.Helper()
	rs := sampleRuleSet()
	rs.Rules = browserRules()
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := rulesio.ExportJSON(rs, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRuleFilterLoad(t *testing.T) {
	path := saveRuleSet(t)

	tests := []struct {
		name   string
		filter ruleFilter
		want   []string
	}{
		{"all", ruleFilter{}, []string{"react", "vite", "zod"}},
		{"package", ruleFilter{pkg: "Vite"}, []string{"vite"}},
		{"source", ruleFilter{source: "inference"}, []string{"zod"}},
		{"min confidence", ruleFilter{minConfidence: 0.6}, []string{"react", "vite"}},
		{"combined", ruleFilter{source: "direct", minConfidence: 0.95}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := tt.filter.load(path)
			if err != nil {
				t.Fatalf("load() error: %v", err)
			}
			var got []string
			for _, r := range rs.Rules {
				got = append(got, r.PackageName)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("load() packages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleFilterLoadErrors(t *testing.T) {
	if _, err := (&ruleFilter{source: "website"}).load(saveRuleSet(t)); err == nil {
		t.Error("unknown source should fail")
	}
	if _, err := (&ruleFilter{}).load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestRuleSetPath(t *testing.T) {
	if got := ruleSetPath(nil); got != "rules.json" {
		t.Errorf("ruleSetPath(nil) = %q", got)
	}
	if got := ruleSetPath([]string{"out/r.json"}); got != "out/r.json" {
		t.Errorf("ruleSetPath = %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := renderMarkdown("# Rules\n\nPrefer **hooks** over classes.\n", "notty")
	if err != nil {
		t.Fatalf("renderMarkdown() error: %v", err)
	}
	if !strings.Contains(out, "Rules") || !strings.Contains(out, "hooks") {
		t.Errorf("renderMarkdown() = %q", out)
	}

	if _, err := renderMarkdown("# x", "no-such-style"); err == nil {
		t.Error("unknown style should fail")
	}
}

func TestFilterKeepsRuleOrder(t *testing.T) {
	path := saveRuleSet(t)
	rs, err := (&ruleFilter{}).load(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []rules.Source{rules.SourceDirect, rules.SourceRepository, rules.SourceInference} {
		if rs.Rules[i].Source != want {
			t.Errorf("Rules[%d].Source = %s, want %s", i, rs.Rules[i].Source, want)
		}
	}
}
