package rust

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackrules/pkg/deps"
)

// CargoToml reads Cargo.toml manifests. Normal, build and dev dependency
// tables are read, including platform-specific [target.*] tables. Path
// dependencies are skipped; workspace-inherited entries take their version
// from [workspace.dependencies].
type CargoToml struct{}

func (CargoToml) Supports(name string) bool { return strings.EqualFold(name, "cargo.toml") }

func (CargoToml) Read(path string) ([]deps.Dependency, error) {
	var cargo cargoFile
	if _, err := toml.DecodeFile(path, &cargo); err != nil {
		return nil, err
	}

	r := reader{source: path, workspace: cargo.Workspace.Dependencies}
	r.add(cargo.Dependencies, deps.DependencyRuntime)
	r.add(cargo.BuildDependencies, deps.DependencyDev)
	r.add(cargo.DevDependencies, deps.DependencyDev)
	for _, t := range cargo.Target {
		r.add(t.Dependencies, deps.DependencyRuntime)
		r.add(t.BuildDependencies, deps.DependencyDev)
		r.add(t.DevDependencies, deps.DependencyDev)
	}
	// A virtual workspace root declares its shared dependencies only there.
	if len(r.out) == 0 && cargo.Package.Name == "" {
		r.workspace = nil
		r.add(cargo.Workspace.Dependencies, deps.DependencyRuntime)
	}

	deps.SortDependencies(r.out)
	return deps.Dedupe(r.out), nil
}

type cargoFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
	Target            map[string]struct {
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
	} `toml:"target"`
	Workspace struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

type reader struct {
	source    string
	workspace map[string]any
	out       []deps.Dependency
}

func (r *reader) add(table map[string]any, t deps.DependencyType) {
	for name, v := range table {
		crate, spec, ok := r.entry(name, v)
		if !ok {
			continue
		}
		r.out = append(r.out, deps.Dependency{Name: crate, Version: spec, Source: r.source, Type: t})
	}
}

// entry returns the published crate name and its requirement. Renamed
// dependencies ("alias = { package = "real" }") resolve to the real name.
func (r *reader) entry(name string, v any) (string, string, bool) {
	switch val := v.(type) {
	case string:
		return name, caret(val), true
	case map[string]any:
		if _, local := val["path"]; local {
			return "", "", false
		}
		if pkg, ok := val["package"].(string); ok && pkg != "" {
			name = pkg
		}
		if inherit, _ := val["workspace"].(bool); inherit {
			ws, ok := r.workspace[name]
			if !ok {
				return name, "", true
			}
			_, spec, ok := r.entry(name, ws)
			return name, spec, ok
		}
		spec, _ := val["version"].(string)
		return name, caret(spec), true
	}
	return "", "", false
}

// caret applies Cargo's default requirement operator: a bare "1.2" means "^1.2".
func caret(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "*" {
		return ""
	}
	if c := spec[0]; c >= '0' && c <= '9' {
		return "^" + spec
	}
	return spec
}
