package python

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackrules/pkg/deps"
)

// Pipfile reads Pipenv's Pipfile ([packages] and [dev-packages]).
type Pipfile struct{}

func (Pipfile) Supports(name string) bool { return name == "Pipfile" }

func (Pipfile) Read(path string) ([]deps.Dependency, error) {
	var doc struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, err
	}
	out := fromTable(doc.Packages, path, deps.DependencyRuntime)
	out = append(out, fromTable(doc.DevPackages, path, deps.DependencyDev)...)
	deps.SortDependencies(out)
	return deps.Dedupe(out), nil
}
