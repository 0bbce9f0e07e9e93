package pypi

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// PackageInfo is one release of a PyPI project.
type PackageInfo struct {
	Name         string            `json:"name"`    // As published, e.g. "FastAPI"
	Version      string            `json:"version"` // Selected release
	Versions     []string          `json:"versions,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"` // Normalized name -> specifier
	ProjectURLs  map[string]string `json:"project_urls,omitempty"`
	HomePage     string            `json:"homepage,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	License      string            `json:"license,omitempty"`
	Author       string            `json:"author,omitempty"`
	AuthorEmail  string            `json:"author_email,omitempty"`
	Maintainer   string            `json:"maintainer,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	PublishedAt  time.Time         `json:"published_at,omitzero"`
}

var githubRE = regexp.MustCompile(`https?://(?:www\.)?github\.com/([^/\s]+)/([^/\s#?]+)`)

// RepositoryURL returns the GitHub repository linked from ProjectURLs or the
// homepage, or "" when none is linked.
func (p *PackageInfo) RepositoryURL() string {
	owner, repo, ok := integrations.ExtractRepoURL(githubRE, p.ProjectURLs, p.HomePage)
	if !ok {
		return ""
	}
	return "https://github.com/" + owner + "/" + repo
}

// Client reads the PyPI JSON API. Safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient returns a client whose responses are cached in backend for
// cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypi", cacheTTL, map[string]string{"User-Agent": integrations.UserAgent}),
		baseURL: "https://pypi.org/pypi",
	}
}

// FetchPackage returns the metadata of pkg at version ("" for the latest
// release). A missing project or release yields [integrations.ErrNotFound].
func (c *Client) FetchPackage(ctx context.Context, pkg, version string, refresh bool) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	key := pkg
	if version != "" {
		key += "@" + version
	}

	var info PackageInfo
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, pkg, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg, version string, info *PackageInfo) error {
	url := c.baseURL + "/" + pkg + "/json"
	if version != "" {
		url = c.baseURL + "/" + pkg + "/" + version + "/json"
	}
	var data apiResponse
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s %s", err, pkg, version)
		}
		return err
	}

	d := data.Info
	*info = PackageInfo{
		Name:         d.Name,
		Version:      d.Version,
		Versions:     slices.Sorted(maps.Keys(data.Releases)),
		Summary:      d.Summary,
		License:      d.license(),
		Dependencies: runtimeDeps(d.RequiresDist),
		ProjectURLs:  stringValues(d.ProjectURLs),
		HomePage:     d.HomePage,
		Author:       d.Author,
		AuthorEmail:  d.AuthorEmail,
		Maintainer:   d.Maintainer,
		Keywords:     splitKeywords(d.Keywords),
	}
	if len(data.URLs) > 0 {
		info.PublishedAt = data.URLs[0].UploadTime
	}
	return nil
}

// project_urls occasionally carries nulls.
func stringValues(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok && s != "" {
			out[k] = s
		}
	}
	return out
}

func splitKeywords(s string) []string {
	sep := ","
	if !strings.Contains(s, ",") {
		sep = " "
	}
	var out []string
	for _, k := range strings.Split(s, sep) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// runtimeDeps maps requires_dist entries to name -> specifier, dropping
// requirements that only apply to an extra. The first entry for a name wins.
func runtimeDeps(requires []string) map[string]string {
	deps := make(map[string]string)
	for _, req := range requires {
		name, spec, ok := parseRequirement(req)
		if !ok {
			continue
		}
		if _, seen := deps[name]; !seen {
			deps[name] = spec
		}
	}
	return deps
}

// parseRequirement splits a PEP 508 requirement such as
// "uvicorn[standard] (>=0.12); python_version >= '3.8'".
func parseRequirement(req string) (name, spec string, ok bool) {
	req, marker, _ := strings.Cut(req, ";")
	if strings.Contains(marker, "extra") {
		return "", "", false
	}
	req = strings.TrimSpace(req)
	end := strings.IndexFunc(req, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' ||
			r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	if end < 0 {
		end = len(req)
	}
	if end == 0 {
		return "", "", false
	}
	name, rest := req[:end], strings.TrimSpace(req[end:])
	if strings.HasPrefix(rest, "[") {
		if i := strings.IndexByte(rest, ']'); i >= 0 {
			rest = strings.TrimSpace(rest[i+1:])
		}
	}
	if strings.HasPrefix(rest, "@") {
		rest = "" // direct URL reference
	}
	rest = strings.TrimSpace(strings.Trim(rest, "()"))
	return integrations.NormalizePkgName(name), rest, true
}

type apiResponse struct {
	Info     apiInfo              `json:"info"`
	Releases map[string][]apiFile `json:"releases"`
	URLs     []apiFile            `json:"urls"`
}

type apiFile struct {
	UploadTime time.Time `json:"upload_time_iso_8601"`
}

type apiInfo struct {
	Name              string         `json:"name"`
	Version           string         `json:"version"`
	Summary           string         `json:"summary"`
	License           string         `json:"license"`
	LicenseExpression string         `json:"license_expression"`
	Classifiers       []string       `json:"classifiers"`
	RequiresDist      []string       `json:"requires_dist"`
	ProjectURLs       map[string]any `json:"project_urls"`
	HomePage          string         `json:"home_page"`
	Author            string         `json:"author"`
	AuthorEmail       string         `json:"author_email"`
	Maintainer        string         `json:"maintainer"`
	Keywords          string         `json:"keywords"`
}

// license prefers the SPDX license_expression, then the most specific
// "License ::" classifier, then the license field when it names a license
// rather than holding its full text.
func (i apiInfo) license() string {
	if e := strings.TrimSpace(i.LicenseExpression); e != "" {
		return e
	}
	for _, c := range i.Classifiers {
		if rest, ok := strings.CutPrefix(c, "License :: "); ok {
			if j := strings.LastIndex(rest, " :: "); j >= 0 {
				return rest[j+4:]
			}
		}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(i.License), "\n")
	if first = strings.TrimSpace(first); len(first) < 80 {
		return first
	}
	return ""
}

// SetBaseURL points the client at a mirror or a test server.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }
