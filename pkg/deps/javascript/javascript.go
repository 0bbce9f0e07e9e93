package javascript

import (
	"context"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/npm"
)

// Language provides JavaScript/TypeScript package metadata via npm.
// Supports package.json manifest files.
var Language = &deps.Language{
	Name:          "javascript",
	Registry:      deps.RegistryNPM,
	ManifestFiles: []string{"package.json"},
	NewFetcher:    newFetcher,
	ManifestReaders: func() []deps.ManifestReader {
		return []deps.ManifestReader{PackageJSON{}}
	},
}

func newFetcher(opts deps.Options) deps.Fetcher {
	c := npm.NewClient(opts.Cache, opts.CacheTTL)
	opts.Configure(c)
	return fetcher{c}
}

type fetcher struct{ *npm.Client }

func (fetcher) CanFetch(name string, t deps.RegistryType) bool {
	return t == deps.RegistryNPM && name != ""
}

func (f fetcher) FetchMetadata(ctx context.Context, name, version string, refresh bool) (*deps.PackageMetadata, error) {
	doc, err := f.FetchPackument(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	v, err := deps.ResolveVersion(version, doc.VersionList(), doc.Latest)
	if err != nil {
		return nil, err
	}
	p, err := doc.Info(v)
	if err != nil {
		return nil, err
	}

	maintainers := make([]deps.Maintainer, 0, len(p.Maintainers))
	for _, m := range p.Maintainers {
		maintainers = append(maintainers, deps.Maintainer{Name: m.Name, Email: m.Email})
	}
	var repo *deps.Repository
	if p.Repository != "" {
		repo = &deps.Repository{Type: p.RepositoryType, URL: p.Repository}
	}

	return deps.NewPackageMetadata(deps.PackageMetadata{
		Name:             p.Name,
		Version:          p.Version,
		Description:      p.Description,
		Homepage:         p.HomePage,
		Repository:       repo,
		License:          p.License,
		Keywords:         p.Keywords,
		Maintainers:      maintainers,
		Dependencies:     p.Dependencies,
		PeerDependencies: p.PeerDependencies,
		PublishedAt:      p.PublishedAt,
		Registry:         deps.RegistryNPM,
	}), nil
}
