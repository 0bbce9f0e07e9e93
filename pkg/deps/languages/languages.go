// Package languages provides the complete list of supported language ecosystems.
//
// This package exists to break import cycles: the individual language packages
// (python, rust, etc.) import pkg/deps, so pkg/deps cannot import them back.
// Instead, consumers that need the full language list import this package.
//
// Usage:
//
//	import "github.com/matzehuels/stackrules/pkg/deps/languages"
//
//	reg := languages.NewRegistry(deps.Options{Cache: c})
//	meta, err := reg.FetchMetadata(ctx, deps.RegistryPyPI, "fastapi", "", false)
package languages

import (
	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/deps/deno"
	"github.com/matzehuels/stackrules/pkg/deps/golang"
	"github.com/matzehuels/stackrules/pkg/deps/javascript"
	"github.com/matzehuels/stackrules/pkg/deps/php"
	"github.com/matzehuels/stackrules/pkg/deps/python"
	"github.com/matzehuels/stackrules/pkg/deps/rust"
)

// All is the canonical list of supported package ecosystems, one per
// registry in [deps.RegistryTypes] order.
var All = []*deps.Language{
	javascript.Language,
	deno.Language,
	python.Language,
	rust.Language,
	golang.Language,
	php.Language,
}

// Find returns the Language with the given name, or nil if not found.
func Find(name string) *deps.Language {
	return deps.FindLanguage(name, All)
}

// ForRegistry returns the Language resolving against t, or nil.
func ForRegistry(t deps.RegistryType) *deps.Language {
	for _, l := range All {
		if l.Registry == t {
			return l
		}
	}
	return nil
}

// NewRegistry builds a fetcher registry covering every supported ecosystem.
func NewRegistry(opts deps.Options) *deps.Registry {
	return deps.NewRegistryFor(opts, All...)
}

// Readers returns the manifest readers of every ecosystem.
func Readers() []deps.ManifestReader {
	var out []deps.ManifestReader
	for _, l := range All {
		out = append(out, l.Readers()...)
	}
	return out
}

// ReadManifest reads the dependencies declared in the manifest at path using
// whichever ecosystem supports its file name.
func ReadManifest(path string) ([]deps.Dependency, error) {
	return deps.ReadManifest(path, Readers()...)
}
