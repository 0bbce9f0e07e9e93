package jsr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// PackageInfo holds metadata for a JSR package.
type PackageInfo struct {
	Scope       string          `json:"scope"`                 // Scope without "@"
	Name        string          `json:"name"`                  // Package name without scope
	Latest      string          `json:"latest"`                // Latest published version
	Versions    map[string]bool `json:"versions"`              // Published version -> yanked
	Description string          `json:"description,omitempty"` // Package description
	Repository  string          `json:"repository,omitempty"`  // GitHub repository URL, if linked
	HomePage    string          `json:"homepage"`              // jsr.io package page
	Runtimes    map[string]bool `json:"runtimes,omitempty"`    // Runtime compatibility flags
	CreatedAt   time.Time       `json:"created_at,omitzero"`   // Package creation time
	UpdatedAt   time.Time       `json:"updated_at,omitzero"`   // Last publish time
}

// FullName returns "@scope/name".
func (p *PackageInfo) FullName() string { return "@" + p.Scope + "/" + p.Name }

// VersionList returns the non-yanked versions in unspecified order.
func (p *PackageInfo) VersionList() []string {
	out := make([]string, 0, len(p.Versions))
	for v, yanked := range p.Versions {
		if !yanked {
			out = append(out, v)
		}
	}
	return out
}

// SplitName parses "@scope/name" (the "jsr:" prefix is accepted).
func SplitName(pkg string) (scope, name string, err error) {
	pkg = strings.TrimPrefix(strings.TrimSpace(pkg), "jsr:")
	if !strings.HasPrefix(pkg, "@") {
		return "", "", errs.New(errs.ErrCodeInvalidPackage, "jsr package %q must be scoped (@scope/name)", pkg)
	}
	scope, name, ok := strings.Cut(pkg[1:], "/")
	if !ok || scope == "" || name == "" {
		return "", "", errs.New(errs.ErrCodeInvalidPackage, "jsr package %q must be scoped (@scope/name)", pkg)
	}
	// Drop a version suffix ("@std/path@^1.0").
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(scope), strings.ToLower(name), nil
}

// Client provides access to the JSR registry. Version lists come from
// jsr.io meta files; descriptions and repository links from api.jsr.io.
type Client struct {
	*integrations.Client
	baseURL string // jsr.io
	apiURL  string // api.jsr.io
}

// NewClient creates a JSR client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "jsr", cacheTTL, map[string]string{"User-Agent": integrations.UserAgent}),
		baseURL: "https://jsr.io",
		apiURL:  "https://api.jsr.io",
	}
}

// FetchPackage retrieves metadata for a scoped JSR package.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	scope, name, err := SplitName(pkg)
	if err != nil {
		return nil, err
	}

	var info PackageInfo
	err = c.Cached(ctx, scope+"/"+name, refresh, &info, func() error {
		return c.fetch(ctx, scope, name, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, scope, name string, info *PackageInfo) error {
	var meta metaResponse
	metaURL := fmt.Sprintf("%s/@%s/%s/meta.json", c.baseURL, scope, name)
	if err := c.Get(ctx, metaURL, &meta); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: jsr package @%s/%s", err, scope, name)
		}
		return err
	}

	*info = PackageInfo{
		Scope:    scope,
		Name:     name,
		Latest:   meta.Latest,
		Versions: make(map[string]bool, len(meta.Versions)),
		HomePage: fmt.Sprintf("https://jsr.io/@%s/%s", scope, name),
	}
	for v, d := range meta.Versions {
		info.Versions[v] = d.Yanked
	}

	// The API document is optional enrichment; the meta file is authoritative.
	var api apiResponse
	apiURL := fmt.Sprintf("%s/scopes/%s/packages/%s", c.apiURL, scope, name)
	if err := c.Get(ctx, apiURL, &api); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil
		}
		return err
	}
	info.Description = api.Description
	info.Runtimes = api.RuntimeCompat
	info.CreatedAt = api.CreatedAt
	info.UpdatedAt = api.UpdatedAt
	if r := api.GithubRepository; r != nil && r.Owner != "" && r.Name != "" {
		info.Repository = "https://github.com/" + r.Owner + "/" + r.Name
	}
	if info.Latest == "" {
		info.Latest = api.LatestVersion
	}
	return nil
}

type metaResponse struct {
	Scope    string                 `json:"scope"`
	Name     string                 `json:"name"`
	Latest   string                 `json:"latest"`
	Versions map[string]versionMeta `json:"versions"`
}

type versionMeta struct {
	Yanked bool `json:"yanked"`
}

type apiResponse struct {
	Scope            string          `json:"scope"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	LatestVersion    string          `json:"latestVersion"`
	GithubRepository *githubRepo     `json:"githubRepository"`
	RuntimeCompat    map[string]bool `json:"runtimeCompat"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type githubRepo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// SetBaseURLs points the client at a mirror or a test server. site serves
// meta.json files, api the package API.
func (c *Client) SetBaseURLs(site, api string) {
	c.baseURL = strings.TrimSuffix(site, "/")
	c.apiURL = strings.TrimSuffix(api, "/")
}
