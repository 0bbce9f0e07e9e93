package php

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/packagist"
)

// ComposerJSON reads composer.json manifests (require and require-dev).
// Platform requirements such as php and ext-* are dropped.
type ComposerJSON struct{}

func (ComposerJSON) Supports(name string) bool { return strings.EqualFold(name, "composer.json") }

func (ComposerJSON) Read(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := deps.FromMap(cleanAll(doc.Require), path, deps.DependencyRuntime)
	out = append(out, deps.FromMap(cleanAll(doc.RequireDev), path, deps.DependencyDev)...)
	deps.SortDependencies(out)
	return deps.Dedupe(out), nil
}

func cleanAll(require map[string]string) map[string]string {
	out := packagist.FilterPlatform(require)
	for name, c := range out {
		out[name] = cleanConstraint(c)
	}
	return out
}

// cleanConstraint strips stability flags ("^1.0@beta") and branch aliases
// ("dev-main as 1.0.x-dev"). Branch constraints resolve to the latest release.
func cleanConstraint(c string) string {
	if i := strings.Index(c, " as "); i >= 0 {
		c = c[:i]
	}
	if i := strings.IndexByte(c, '@'); i >= 0 {
		c = c[:i]
	}
	c = strings.TrimSpace(c)
	if c == "*" || strings.HasPrefix(c, "dev-") || strings.HasSuffix(c, "-dev") {
		return ""
	}
	return c
}
