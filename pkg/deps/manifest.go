package deps

import (
	"path/filepath"
	"slices"
	"strings"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// ManifestReader reads the direct dependencies declared in a local manifest.
type ManifestReader interface {
	// Supports reports whether this reader handles the given filename.
	Supports(filename string) bool
	// Read parses the manifest at path. Every returned Dependency has
	// Source set to path.
	Read(path string) ([]Dependency, error)
}

// DetectReader finds a reader that supports the given file path.
// Returns an error if no reader matches.
func DetectReader(path string, readers ...ManifestReader) (ManifestReader, error) {
	name := filepath.Base(path)
	for _, r := range readers {
		if r.Supports(name) {
			return r, nil
		}
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported manifest: %s", name)
}

// ReadManifest detects the reader for path and reads it.
func ReadManifest(path string, readers ...ManifestReader) ([]Dependency, error) {
	r, err := DetectReader(path, readers...)
	if err != nil {
		return nil, err
	}
	out, err := r.Read(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "read %s", path)
	}
	return out, nil
}

// SortDependencies orders dependencies by scope (runtime first) then name,
// so manifest readers that walk maps return deterministic output.
func SortDependencies(ds []Dependency) {
	slices.SortStableFunc(ds, func(a, b Dependency) int {
		if c := scopeRank(a.Type) - scopeRank(b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

func scopeRank(t DependencyType) int {
	switch t {
	case DependencyRuntime, "":
		return 0
	case DependencyPeer:
		return 1
	case DependencyOptional:
		return 2
	default:
		return 3
	}
}

// FromMap converts a name→version map from a manifest section into
// dependencies of the given scope. Version strings are trimmed.
func FromMap(m map[string]string, source string, t DependencyType) []Dependency {
	out := make([]Dependency, 0, len(m))
	for name, version := range m {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Dependency{
			Name:    name,
			Version: strings.TrimSpace(version),
			Source:  source,
			Type:    t,
		})
	}
	return out
}

// Dedupe drops later duplicates of the same name, keeping the first (most
// significant scope after sorting).
func Dedupe(ds []Dependency) []Dependency {
	seen := make(map[string]bool, len(ds))
	out := ds[:0:0]
	for _, d := range ds {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}
