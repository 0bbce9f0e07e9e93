package golang

import (
	"os"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/goproxy"
)

// GoMod reads go.mod files. Only direct requirements are returned;
// "// indirect" entries are skipped.
type GoMod struct{}

func (GoMod) Supports(name string) bool { return name == "go.mod" }

func (GoMod) Read(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	requires, err := goproxy.ParseGoModRequires(path, data)
	if err != nil {
		return nil, err
	}
	out := deps.FromMap(requires, path, deps.DependencyRuntime)
	deps.SortDependencies(out)
	return out, nil
}
