package npm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// PackageInfo holds the metadata of one published npm version.
type PackageInfo struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Description      string            `json:"description,omitempty"`
	HomePage         string            `json:"homepage,omitempty"`
	Repository       string            `json:"repository,omitempty"`      // Normalized https URL
	RepositoryType   string            `json:"repository_type,omitempty"` // Usually "git"
	License          string            `json:"license,omitempty"`
	Author           string            `json:"author,omitempty"`
	Keywords         []string          `json:"keywords,omitempty"`
	Maintainers      []Maintainer      `json:"maintainers,omitempty"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	PeerDependencies map[string]string `json:"peer_dependencies,omitempty"`
	PublishedAt      time.Time         `json:"published_at,omitzero"`
}

// Maintainer is an npm user with publish rights.
type Maintainer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Packument is the reduced registry document of a package: every published
// version plus the dist-tags needed to pick one.
type Packument struct {
	Name     string                  `json:"name"`
	Latest   string                  `json:"latest"`
	Versions map[string]*PackageInfo `json:"versions"`
}

// VersionList returns all published versions in unspecified order.
func (p *Packument) VersionList() []string {
	return slices.Collect(maps.Keys(p.Versions))
}

// Info returns the metadata of version, or ErrNotFound.
func (p *Packument) Info(version string) (*PackageInfo, error) {
	if version == "" {
		version = p.Latest
	}
	info, ok := p.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: npm package %s@%s", integrations.ErrNotFound, p.Name, version)
	}
	return info, nil
}

// Client provides access to the npm registry API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npm client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm", cacheTTL, map[string]string{"User-Agent": integrations.UserAgent}),
		baseURL: "https://registry.npmjs.org",
	}
}

// FetchPackument retrieves every published version of pkg.
// Scoped names ("@scope/name") are supported.
func (c *Client) FetchPackument(ctx context.Context, pkg string, refresh bool) (*Packument, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

	var p Packument
	err := c.Cached(ctx, pkg, refresh, &p, func() error {
		return c.fetch(ctx, pkg, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchPackage retrieves metadata for pkg at an exact version; an empty
// version selects the "latest" dist-tag.
func (c *Client) FetchPackage(ctx context.Context, pkg, version string, refresh bool) (*PackageInfo, error) {
	p, err := c.FetchPackument(ctx, pkg, refresh)
	if err != nil {
		return nil, err
	}
	return p.Info(version)
}

func (c *Client) fetch(ctx context.Context, pkg string, p *Packument) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	p.Name = data.Name
	p.Latest = data.DistTags.Latest
	p.Versions = make(map[string]*PackageInfo, len(data.Versions))
	for v, d := range data.Versions {
		repoType, repoURL := extractRepository(d.Repository)
		info := &PackageInfo{
			Name:             data.Name,
			Version:          v,
			Description:      d.Description,
			HomePage:         extractField(d.HomePage, "url"),
			Repository:       integrations.NormalizeRepoURL(repoURL),
			RepositoryType:   repoType,
			License:          extractField(d.License, "type"),
			Author:           extractField(d.Author, "name"),
			Keywords:         extractKeywords(d.Keywords),
			Maintainers:      extractMaintainers(d.Maintainers),
			Dependencies:     d.Dependencies,
			PeerDependencies: d.PeerDependencies,
		}
		if ts, ok := data.Time[v]; ok {
			info.PublishedAt, _ = time.Parse(time.RFC3339, ts)
		}
		p.Versions[v] = info
	}
	if p.Latest == "" && len(p.Versions) == 0 {
		return fmt.Errorf("%w: npm package %s has no versions", integrations.ErrNotFound, pkg)
	}
	return nil
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

// extractRepository handles both `"repository": "github:o/r"` and the
// object form `{"type": "git", "url": "..."}`.
func extractRepository(v any) (typ, url string) {
	switch val := v.(type) {
	case string:
		return "git", val
	case map[string]any:
		typ, _ = val["type"].(string)
		url, _ = val["url"].(string)
	}
	return typ, url
}

// extractKeywords tolerates the comma-separated string some old packages use.
func extractKeywords(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, k := range val {
			if s, ok := k.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, k := range strings.Split(val, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
		return out
	}
	return nil
}

func extractMaintainers(v []any) []Maintainer {
	out := make([]Maintainer, 0, len(v))
	for _, m := range v {
		switch val := m.(type) {
		case map[string]any:
			name, _ := val["name"].(string)
			email, _ := val["email"].(string)
			out = append(out, Maintainer{Name: name, Email: email})
		case string:
			// "Name <email>"
			name, email, _ := strings.Cut(val, "<")
			out = append(out, Maintainer{Name: strings.TrimSpace(name), Email: strings.TrimSuffix(strings.TrimSpace(email), ">")})
		}
	}
	return out
}

type registryResponse struct {
	Name     string                    `json:"name"`
	DistTags distTags                  `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
	Time     map[string]string         `json:"time"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Description      string            `json:"description"`
	License          any               `json:"license"`
	Author           any               `json:"author"`
	Repository       any               `json:"repository"`
	HomePage         any               `json:"homepage"`
	Keywords         any               `json:"keywords"`
	Maintainers      []any             `json:"maintainers"`
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// SetBaseURL points the client at a mirror or a test server.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }
