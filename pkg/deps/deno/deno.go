package deno

import (
	"context"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/jsr"
)

// Language provides JSR package metadata for Deno projects.
// Supports deno.json, deno.jsonc and jsr.json manifest files.
var Language = &deps.Language{
	Name:          "deno",
	Registry:      deps.RegistryJSR,
	ManifestFiles: []string{"deno.json", "deno.jsonc", "jsr.json"},
	NewFetcher:    newFetcher,
	ManifestReaders: func() []deps.ManifestReader {
		return []deps.ManifestReader{DenoJSON{}}
	},
}

func newFetcher(opts deps.Options) deps.Fetcher {
	c := jsr.NewClient(opts.Cache, opts.CacheTTL)
	opts.Configure(c)
	return fetcher{c}
}

type fetcher struct{ *jsr.Client }

func (fetcher) CanFetch(name string, t deps.RegistryType) bool {
	if t != deps.RegistryJSR {
		return false
	}
	_, _, err := jsr.SplitName(name)
	return err == nil
}

// FetchMetadata resolves version against the published version list. JSR
// serves one document per package, so description and repository are those
// of the package rather than of the resolved release.
func (f fetcher) FetchMetadata(ctx context.Context, name, version string, refresh bool) (*deps.PackageMetadata, error) {
	p, err := f.FetchPackage(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	v, err := deps.ResolveVersion(version, p.VersionList(), p.Latest)
	if err != nil {
		return nil, err
	}

	var repo *deps.Repository
	if p.Repository != "" {
		repo = &deps.Repository{Type: "git", URL: p.Repository}
	}
	return deps.NewPackageMetadata(deps.PackageMetadata{
		Name:        p.FullName(),
		Version:     v,
		Description: p.Description,
		Homepage:    p.HomePage,
		Repository:  repo,
		PublishedAt: p.UpdatedAt,
		Registry:    deps.RegistryJSR,
	}), nil
}
