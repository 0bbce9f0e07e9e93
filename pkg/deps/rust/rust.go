package rust

import (
	"context"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/crates"
)

// Language provides Rust crate metadata via crates.io.
// Supports Cargo.toml manifest files.
var Language = &deps.Language{
	Name:          "rust",
	Registry:      deps.RegistryCargo,
	ManifestFiles: []string{"Cargo.toml"},
	NewFetcher:    newFetcher,
	ManifestReaders: func() []deps.ManifestReader {
		return []deps.ManifestReader{CargoToml{}}
	},
}

func newFetcher(opts deps.Options) deps.Fetcher {
	c := crates.NewClient(opts.Cache, opts.CacheTTL)
	opts.Configure(c)
	return fetcher{c}
}

type fetcher struct{ *crates.Client }

func (fetcher) CanFetch(name string, t deps.RegistryType) bool {
	return t == deps.RegistryCargo && name != ""
}

func (f fetcher) FetchMetadata(ctx context.Context, name, version string, refresh bool) (*deps.PackageMetadata, error) {
	cr, err := deps.FetchVersion(version,
		func(v string) (*crates.CrateInfo, error) { return f.FetchCrate(ctx, name, v, refresh) },
		func(c *crates.CrateInfo) ([]string, string) { return c.Versions, c.Version },
	)
	if err != nil {
		return nil, err
	}

	maintainers := make([]deps.Maintainer, 0, len(cr.Owners))
	for _, o := range cr.Owners {
		n := o.Name
		if n == "" {
			n = o.Login
		}
		maintainers = append(maintainers, deps.Maintainer{Name: n})
	}
	var repo *deps.Repository
	if cr.Repository != "" {
		repo = &deps.Repository{Type: "git", URL: cr.Repository}
	}

	return deps.NewPackageMetadata(deps.PackageMetadata{
		Name:         cr.Name,
		Version:      cr.Version,
		Description:  cr.Description,
		Homepage:     cr.HomePage,
		Repository:   repo,
		License:      cr.License,
		Keywords:     cr.Keywords,
		Maintainers:  maintainers,
		Dependencies: cr.Dependencies,
		PublishedAt:  cr.PublishedAt,
		Registry:     deps.RegistryCargo,
	}), nil
}
