package python

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackrules/pkg/deps"
)

// Pyproject reads pyproject.toml files: PEP 621 [project] dependencies and
// optional-dependencies, PEP 735 [dependency-groups], and Poetry's
// [tool.poetry] dependency tables.
type Pyproject struct{}

func (Pyproject) Supports(name string) bool { return name == "pyproject.toml" }

func (Pyproject) Read(path string) ([]deps.Dependency, error) {
	var doc pyprojectFile
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, err
	}

	var out []deps.Dependency
	add := func(reqs []string, t deps.DependencyType) {
		for _, r := range reqs {
			if name, spec, ok := ParseRequirement(r); ok {
				out = append(out, deps.Dependency{Name: name, Version: spec, Source: path, Type: t})
			}
		}
	}

	add(doc.Project.Dependencies, deps.DependencyRuntime)
	for _, reqs := range doc.Project.OptionalDependencies {
		add(reqs, deps.DependencyOptional)
	}
	for _, group := range doc.DependencyGroups {
		var reqs []string
		for _, entry := range group {
			// {include-group = "..."} entries reference other groups
			if s, ok := entry.(string); ok {
				reqs = append(reqs, s)
			}
		}
		add(reqs, deps.DependencyDev)
	}

	poetry := doc.Tool.Poetry
	out = append(out, fromTable(poetry.Dependencies, path, deps.DependencyRuntime)...)
	out = append(out, fromTable(poetry.DevDependencies, path, deps.DependencyDev)...)
	for _, g := range poetry.Group {
		out = append(out, fromTable(g.Dependencies, path, deps.DependencyDev)...)
	}

	deps.SortDependencies(out)
	return deps.Dedupe(out), nil
}

type pyprojectFile struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// fromTable converts a Poetry or Pipfile dependency table. Values are either
// a version string or an inline table with "version", "optional", "path"
// and VCS keys.
func fromTable(table map[string]any, source string, t deps.DependencyType) []deps.Dependency {
	var out []deps.Dependency
	for name, v := range table {
		if strings.EqualFold(name, "python") {
			continue
		}
		spec, scope, ok := tableSpec(v, t)
		if !ok {
			continue
		}
		out = append(out, deps.Dependency{Name: normalize(name), Version: spec, Source: source, Type: scope})
	}
	return out
}

func tableSpec(v any, t deps.DependencyType) (string, deps.DependencyType, bool) {
	switch val := v.(type) {
	case string:
		return cleanSpec(val), t, true
	case map[string]any:
		if _, local := val["path"]; local {
			return "", t, false
		}
		if opt, _ := val["optional"].(bool); opt && t == deps.DependencyRuntime {
			t = deps.DependencyOptional
		}
		spec, _ := val["version"].(string)
		return cleanSpec(spec), t, true
	case []map[string]any:
		// Multiple-constraint form: the first entry with a version wins.
		for _, m := range val {
			if spec, ok := m["version"].(string); ok {
				return cleanSpec(spec), t, true
			}
		}
		return "", t, true
	}
	return "", t, false
}

func cleanSpec(s string) string {
	s = strings.Join(strings.Fields(s), "")
	if s == "*" {
		return ""
	}
	return s
}
