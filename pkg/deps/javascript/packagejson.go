package javascript

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/matzehuels/stackrules/pkg/deps"
)

// PackageJSON reads package.json files. It extracts dependencies,
// devDependencies, peerDependencies and optionalDependencies.
type PackageJSON struct{}

func (PackageJSON) Supports(name string) bool { return strings.EqualFold(name, "package.json") }

func (PackageJSON) Read(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	var out []deps.Dependency
	out = append(out, fromSection(pkg.Dependencies, path, deps.DependencyRuntime)...)
	out = append(out, fromSection(pkg.PeerDependencies, path, deps.DependencyPeer)...)
	out = append(out, fromSection(pkg.OptionalDependencies, path, deps.DependencyOptional)...)
	out = append(out, fromSection(pkg.DevDependencies, path, deps.DependencyDev)...)
	deps.SortDependencies(out)
	return deps.Dedupe(out), nil
}

// fromSection converts one dependency map. Workspace and local-path
// dependencies are dropped; git and URL dependencies keep their name but
// resolve to the latest release.
func fromSection(m map[string]string, path string, t deps.DependencyType) []deps.Dependency {
	out := deps.FromMap(m, path, t)
	kept := out[:0]
	for _, d := range out {
		switch {
		case isLocal(d.Version):
			continue
		case isRemote(d.Version):
			d.Version = ""
		}
		kept = append(kept, d)
	}
	return kept
}

func isLocal(spec string) bool {
	for _, p := range []string{"workspace:", "file:", "link:", "portal:"} {
		if strings.HasPrefix(spec, p) {
			return true
		}
	}
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func isRemote(spec string) bool {
	return strings.Contains(spec, "://") || strings.HasPrefix(spec, "git+") ||
		strings.HasPrefix(spec, "github:") || strings.HasPrefix(spec, "npm:")
}

type packageFile struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}
