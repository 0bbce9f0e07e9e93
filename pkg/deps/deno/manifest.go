package deno

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// DenoJSON reads the import map of deno.json, deno.jsonc and jsr.json.
// Only "jsr:" specifiers are returned; npm:, URL and relative imports are
// skipped since they do not resolve against JSR.
type DenoJSON struct{}

func (DenoJSON) Supports(name string) bool {
	switch strings.ToLower(name) {
	case "deno.json", "deno.jsonc", "jsr.json":
		return true
	}
	return false
}

func (DenoJSON) Read(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// deno.json also accepts comments and trailing commas.
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "parse %s", path)
	}
	var doc struct {
		Imports map[string]string `json:"imports"`
	}
	if err := json.Unmarshal(std, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "parse %s", path)
	}

	var out []deps.Dependency
	for _, spec := range doc.Imports {
		name, version, ok := ParseSpecifier(spec)
		if !ok {
			continue
		}
		out = append(out, deps.Dependency{Name: name, Version: version, Source: path, Type: deps.DependencyRuntime})
	}
	deps.SortDependencies(out)
	return deps.Dedupe(out), nil
}

// ParseSpecifier splits a JSR import specifier such as
// "jsr:@std/path@^1.0.8/posix" into "@std/path" and "^1.0.8".
func ParseSpecifier(spec string) (name, version string, ok bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(spec), "jsr:")
	if !ok {
		return "", "", false
	}
	rest = strings.TrimPrefix(rest, "/")
	if !strings.HasPrefix(rest, "@") {
		return "", "", false
	}
	scope, pkg, found := strings.Cut(rest[1:], "/")
	if !found || scope == "" {
		return "", "", false
	}
	pkg, version, _ = strings.Cut(pkg, "@")
	if i := strings.IndexByte(pkg, '/'); i >= 0 {
		pkg, version = pkg[:i], ""
	}
	if i := strings.IndexByte(version, '/'); i >= 0 {
		version = version[:i]
	}
	if pkg == "" {
		return "", "", false
	}
	return "@" + strings.ToLower(scope) + "/" + strings.ToLower(pkg), version, true
}
