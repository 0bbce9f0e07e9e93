package python

import (
	"context"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations"
	"github.com/matzehuels/stackrules/pkg/integrations/pypi"
)

// Language provides Python package metadata via PyPI.
// Supports requirements.txt, pyproject.toml (PEP 621 and Poetry) and Pipfile.
var Language = &deps.Language{
	Name:          "python",
	Registry:      deps.RegistryPyPI,
	ManifestFiles: []string{"requirements.txt", "pyproject.toml", "Pipfile"},
	NewFetcher:    newFetcher,
	ManifestReaders: func() []deps.ManifestReader {
		return []deps.ManifestReader{Requirements{}, Pyproject{}, Pipfile{}}
	},
}

func newFetcher(opts deps.Options) deps.Fetcher {
	c := pypi.NewClient(opts.Cache, opts.CacheTTL)
	opts.Configure(c)
	return fetcher{c}
}

type fetcher struct{ *pypi.Client }

func (fetcher) CanFetch(name string, t deps.RegistryType) bool {
	return t == deps.RegistryPyPI && name != ""
}

func (f fetcher) FetchMetadata(ctx context.Context, name, version string, refresh bool) (*deps.PackageMetadata, error) {
	p, err := deps.FetchVersion(version,
		func(v string) (*pypi.PackageInfo, error) { return f.FetchPackage(ctx, name, v, refresh) },
		func(p *pypi.PackageInfo) ([]string, string) { return p.Versions, p.Version },
	)
	if err != nil {
		return nil, err
	}

	var maintainers []deps.Maintainer
	if p.Author != "" || p.AuthorEmail != "" {
		maintainers = append(maintainers, deps.Maintainer{Name: p.Author, Email: p.AuthorEmail})
	}
	if p.Maintainer != "" && p.Maintainer != p.Author {
		maintainers = append(maintainers, deps.Maintainer{Name: p.Maintainer})
	}
	var repo *deps.Repository
	if u := p.RepositoryURL(); u != "" {
		repo = &deps.Repository{Type: "git", URL: u}
	}
	homepage := p.HomePage
	if homepage == "" {
		homepage = p.ProjectURLs["Homepage"]
	}

	return deps.NewPackageMetadata(deps.PackageMetadata{
		Name:         p.Name,
		Version:      p.Version,
		Description:  p.Summary,
		Homepage:     homepage,
		Repository:   repo,
		License:      p.License,
		Keywords:     p.Keywords,
		Maintainers:  maintainers,
		Dependencies: p.Dependencies,
		PublishedAt:  p.PublishedAt,
		Registry:     deps.RegistryPyPI,
	}), nil
}

func normalize(name string) string {
	return integrations.NormalizePkgName(name)
}
