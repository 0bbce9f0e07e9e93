package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/deps/languages"
)

// ReadDependencies collects the dependencies named by opts: every manifest
// file, every inline manifest and every explicit package. Duplicates (same
// registry and name) keep their first occurrence.
func ReadDependencies(opts Options) ([]deps.Dependency, error) {
	var all []deps.Dependency
	for _, path := range opts.Manifests {
		ds, err := languages.ReadManifest(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		all = append(all, ds...)
	}
	for _, m := range opts.Inline {
		ds, err := readInline(m)
		if err != nil {
			return nil, err
		}
		all = append(all, ds...)
	}
	all = append(all, opts.Packages...)
	return dedupe(all), nil
}

// readInline writes manifest content to a temp dir so the file-based
// readers can parse it, then reports the dependencies against the original
// filename.
func readInline(m InlineManifest) ([]deps.Dependency, error) {
	tmpDir, err := os.MkdirTemp("", "stackrules-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	name := filepath.Base(m.Filename)
	path := filepath.Join(tmpDir, name)
	if err := os.WriteFile(path, []byte(m.Content), 0644); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	ds, err := languages.ReadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	for i := range ds {
		ds[i].Source = m.Filename
	}
	return ds, nil
}

func dedupe(ds []deps.Dependency) []deps.Dependency {
	seen := make(map[string]bool, len(ds))
	out := make([]deps.Dependency, 0, len(ds))
	for _, d := range ds {
		key := string(d.Registry()) + ":" + d.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
