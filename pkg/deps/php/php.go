package php

import (
	"context"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/packagist"
)

// Language provides PHP package metadata via Packagist.
// Supports composer.json manifest files.
var Language = &deps.Language{
	Name:          "php",
	Registry:      deps.RegistryComposer,
	ManifestFiles: []string{"composer.json"},
	NewFetcher:    newFetcher,
	ManifestReaders: func() []deps.ManifestReader {
		return []deps.ManifestReader{ComposerJSON{}}
	},
}

func newFetcher(opts deps.Options) deps.Fetcher {
	c := packagist.NewClient(opts.Cache, opts.CacheTTL)
	opts.Configure(c)
	return fetcher{c}
}

type fetcher struct{ *packagist.Client }

func (fetcher) CanFetch(name string, t deps.RegistryType) bool {
	return t == deps.RegistryComposer && name != ""
}

func (f fetcher) FetchMetadata(ctx context.Context, name, version string, refresh bool) (*deps.PackageMetadata, error) {
	p, err := deps.FetchVersion(version,
		func(v string) (*packagist.PackageInfo, error) { return f.FetchPackage(ctx, name, v, refresh) },
		func(p *packagist.PackageInfo) ([]string, string) { return p.Versions, p.Version },
	)
	if err != nil {
		return nil, err
	}

	var maintainers []deps.Maintainer
	if p.Author != "" {
		maintainers = append(maintainers, deps.Maintainer{Name: p.Author})
	}
	var repo *deps.Repository
	if p.Repository != "" {
		repo = &deps.Repository{Type: "git", URL: p.Repository}
	}

	return deps.NewPackageMetadata(deps.PackageMetadata{
		Name:         p.Name,
		Version:      p.Version,
		Description:  p.Description,
		Homepage:     p.HomePage,
		Repository:   repo,
		License:      p.License,
		Keywords:     p.Keywords,
		Maintainers:  maintainers,
		Dependencies: p.Dependencies,
		PublishedAt:  p.PublishedAt,
		Registry:     deps.RegistryComposer,
	}), nil
}
