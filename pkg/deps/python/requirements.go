package python

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/stackrules/pkg/deps"
)

var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// Requirements reads pip requirements files (requirements.txt,
// requirements-dev.txt, ...). Nested "-r" includes are followed.
type Requirements struct{}

func (Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (Requirements) Read(path string) ([]deps.Dependency, error) {
	var out []deps.Dependency
	if err := readRequirements(path, path, map[string]bool{}, &out); err != nil {
		return nil, err
	}
	deps.SortDependencies(out)
	return deps.Dedupe(out), nil
}

func readRequirements(path, source string, seen map[string]bool, out *[]deps.Dependency) error {
	abs, _ := filepath.Abs(path)
	if seen[abs] {
		return nil
	}
	seen[abs] = true

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scope := scopeFor(filepath.Base(path))
	var pending string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasSuffix(line, `\`) {
			pending += strings.TrimSuffix(line, `\`) + " "
			continue
		}
		line, pending = pending+line, ""

		if include, ok := includeTarget(line); ok {
			if !filepath.IsAbs(include) {
				include = filepath.Join(filepath.Dir(path), include)
			}
			if err := readRequirements(include, source, seen, out); err != nil {
				return err
			}
			continue
		}
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") && !strings.Contains(line, "@") || strings.HasPrefix(line, "git+") {
			continue
		}
		if name, spec, ok := ParseRequirement(line); ok {
			*out = append(*out, deps.Dependency{Name: name, Version: spec, Source: source, Type: scope})
		}
	}
	return scanner.Err()
}

func includeTarget(line string) (string, bool) {
	for _, p := range []string{"-r ", "--requirement ", "--requirement="} {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p)), true
		}
	}
	return "", false
}

// scopeFor treats requirements-dev.txt, requirements-test.txt and similar
// as development dependencies.
func scopeFor(name string) deps.DependencyType {
	lower := strings.ToLower(name)
	for _, k := range []string{"dev", "test", "lint", "doc"} {
		if strings.Contains(lower, k) {
			return deps.DependencyDev
		}
	}
	return deps.DependencyRuntime
}

// ParseRequirement splits a PEP 508 requirement ("requests[socks]>=2.31; python_version>'3.8'")
// into its normalized name and version specifier. Extras, environment markers
// and inline comments are dropped; direct URL references have no specifier.
func ParseRequirement(s string) (name, spec string, ok bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " #"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	m := depNameRE.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", "", false
	}
	rest := strings.TrimSpace(s[len(m[0]):])
	if strings.HasPrefix(rest, "[") {
		if i := strings.IndexByte(rest, ']'); i >= 0 {
			rest = strings.TrimSpace(rest[i+1:])
		}
	}
	if strings.HasPrefix(rest, "@") {
		return normalize(m[1]), "", true
	}
	rest = strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")
	return normalize(m[1]), strings.Join(strings.Fields(rest), ""), true
}
