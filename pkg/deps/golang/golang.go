package golang

import (
	"context"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations/goproxy"
)

// Language provides Go module metadata via the Go module proxy.
// Supports go.mod manifest files.
var Language = &deps.Language{
	Name:          "go",
	Registry:      deps.RegistryGo,
	ManifestFiles: []string{"go.mod"},
	NewFetcher:    newFetcher,
	ManifestReaders: func() []deps.ManifestReader {
		return []deps.ManifestReader{GoMod{}}
	},
}

func newFetcher(opts deps.Options) deps.Fetcher {
	c := goproxy.NewClient(opts.Cache, opts.CacheTTL)
	opts.Configure(c)
	return fetcher{c}
}

type fetcher struct{ *goproxy.Client }

func (fetcher) CanFetch(name string, t deps.RegistryType) bool {
	return t == deps.RegistryGo && name != ""
}

// FetchMetadata fetches module metadata. The proxy publishes no description,
// license or homepage, so only the repository guessed from the module path
// is available for rule discovery.
func (f fetcher) FetchMetadata(ctx context.Context, name, version string, refresh bool) (*deps.PackageMetadata, error) {
	m, err := deps.FetchVersion(version,
		func(v string) (*goproxy.ModuleInfo, error) { return f.FetchModule(ctx, name, v, refresh) },
		func(m *goproxy.ModuleInfo) ([]string, string) { return m.Versions, m.Version },
	)
	if err != nil {
		return nil, err
	}

	var repo *deps.Repository
	if u := m.Repository(); u != "" {
		repo = &deps.Repository{Type: "git", URL: u}
	}
	return deps.NewPackageMetadata(deps.PackageMetadata{
		Name:         m.Path,
		Version:      m.Version,
		Repository:   repo,
		Dependencies: m.Dependencies,
		PublishedAt:  m.Time,
		Registry:     deps.RegistryGo,
	}), nil
}
