package packagist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/stackrules/pkg/cache"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// PackageInfo is one release of a Composer package.
type PackageInfo struct {
	Name         string            `json:"name"`    // vendor/package
	Version      string            `json:"version"` // As tagged, e.g. "v6.3.0"
	Versions     []string          `json:"versions,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"` // See [FilterPlatform]
	Repository   string            `json:"repository,omitempty"`
	HomePage     string            `json:"homepage,omitempty"`
	Description  string            `json:"description,omitempty"`
	License      string            `json:"license,omitempty"` // First listed
	Author       string            `json:"author,omitempty"`  // First listed
	Keywords     []string          `json:"keywords,omitempty"`
	PublishedAt  time.Time         `json:"published_at,omitzero"`
}

// Client reads the Packagist p2 metadata endpoint. Safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient returns a client whose responses are cached in backend for
// cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "packagist", cacheTTL, map[string]string{"User-Agent": integrations.UserAgent}),
		baseURL: "https://repo.packagist.org",
	}
}

// FetchPackage returns pkg ("vendor/name", case-insensitive) at version.
// An empty version selects the highest stable release; otherwise the
// version must be published, with or without a leading "v".
func (c *Client) FetchPackage(ctx context.Context, pkg, version string, refresh bool) (*PackageInfo, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))
	if !strings.Contains(pkg, "/") {
		return nil, errs.New(errs.ErrCodeInvalidPackage, "packagist package %q must be vendor/name", pkg)
	}
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
	var data p2Response
	if err := c.Get(ctx, fmt.Sprintf("%s/p2/%s.json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: packagist package %s", err, pkg)
		}
		return err
	}

	raw, ok := data.Packages[pkg]
	if !ok || len(raw) == 0 {
		return fmt.Errorf("%w: no versions found for %s", integrations.ErrNotFound, pkg)
	}
	versions, err := expand(raw, data.Minified != "")
	if err != nil {
		return errs.Wrap(errs.ErrCodeParse, err, "decode packagist metadata for %s", pkg)
	}

	var v *p2Version
	if version == "" {
		v = latestStable(versions)
	} else if v = findVersion(versions, version); v == nil {
		return fmt.Errorf("%w: packagist package %s version %s", integrations.ErrNotFound, pkg, version)
	}

	var license, author string
	if len(v.License) > 0 {
		license = v.License[0]
	}
	if len(v.Authors) > 0 {
		author = strings.TrimSpace(v.Authors[0].Name)
	}

	var list []string
	for _, pv := range versions {
		if !isDev(pv.Version) {
			list = append(list, pv.Version)
		}
	}

	*info = PackageInfo{
		Name:         v.Name,
		Version:      v.Version,
		Versions:     list,
		Description:  v.Description,
		License:      license,
		Author:       author,
		Keywords:     v.Keywords,
		Repository:   integrations.NormalizeRepoURL(v.Source.URL),
		HomePage:     v.Homepage,
		Dependencies: FilterPlatform(v.Require),
		PublishedAt:  v.Time,
	}
	if info.Name == "" {
		info.Name = pkg
	}
	return nil
}

// expand decodes the version list. Minified metadata (composer/2.0) stores
// only the fields that changed from the previous entry; "__unset" removes
// a field.
func expand(raw []map[string]json.RawMessage, minified bool) ([]p2Version, error) {
	out := make([]p2Version, 0, len(raw))
	state := map[string]json.RawMessage{}
	for _, entry := range raw {
		if !minified {
			state = entry
		} else {
			for k, val := range entry {
				if string(val) == `"__unset"` {
					delete(state, k)
					continue
				}
				state[k] = val
			}
		}
		b, err := json.Marshal(state)
		if err != nil {
			return nil, err
		}
		var v p2Version
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FilterPlatform drops platform requirements (php, ext-*, lib-*, composer
// APIs) from a require map and lowercases package names.
func FilterPlatform(require map[string]string) map[string]string {
	deps := make(map[string]string)
	for name, constraint := range require {
		ln := strings.ToLower(name)
		switch {
		case ln == "php" || ln == "composer-plugin-api" || ln == "composer-runtime-api":
			continue
		case strings.HasPrefix(ln, "ext-") || strings.HasPrefix(ln, "lib-"):
			continue
		case !strings.Contains(ln, "/"):
			continue
		}
		deps[ln] = constraint
	}
	return deps
}

func isDev(version string) bool {
	return strings.Contains(strings.ToLower(version), "dev")
}

// latestStable returns the highest release without a pre-release suffix,
// falling back to the newest entry when nothing parses as stable.
func latestStable(versions []p2Version) *p2Version {
	var best *p2Version
	var bestV *semver.Version
	for i, v := range versions {
		if isDev(v.Version) {
			continue
		}
		sv, err := semver.NewVersion(v.Version)
		if err != nil || sv.Prerelease() != "" {
			continue
		}
		if bestV == nil || sv.GreaterThan(bestV) {
			best, bestV = &versions[i], sv
		}
	}
	if best == nil {
		return &versions[0]
	}
	return best
}

func findVersion(versions []p2Version, want string) *p2Version {
	want = strings.TrimPrefix(strings.ToLower(want), "v")
	for i, v := range versions {
		if strings.TrimPrefix(strings.ToLower(v.Version), "v") == want {
			return &versions[i]
		}
	}
	return nil
}

type p2Response struct {
	Minified string                                  `json:"minified"`
	Packages map[string][]map[string]json.RawMessage `json:"packages"`
}

type p2Author struct {
	Name string `json:"name"`
}

type p2Version struct {
	Name        string
	Version     string
	Description string
	Homepage    string
	Keywords    []string
	License     []string
	Require     map[string]string
	Time        time.Time
	Source      struct {
		URL string `json:"url"`
	}
	Authors []p2Author
}

func (v *p2Version) UnmarshalJSON(b []byte) error {
	type raw struct {
		Name        string          `json:"name"`
		Version     string          `json:"version"`
		Description string          `json:"description"`
		Homepage    string          `json:"homepage"`
		Keywords    json.RawMessage `json:"keywords"`
		License     json.RawMessage `json:"license"`
		Require     json.RawMessage `json:"require"`
		Time        string          `json:"time"`
		Source      struct {
			URL string `json:"url"`
		} `json:"source"`
		Authors []p2Author `json:"authors"`
	}

	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	v.Name = r.Name
	v.Version = r.Version
	v.Description = r.Description
	v.Homepage = r.Homepage
	v.Source = r.Source
	v.Authors = r.Authors
	if t, err := time.Parse(time.RFC3339, r.Time); err == nil {
		v.Time = t
	}

	v.License = stringList(r.License)
	v.Keywords = stringList(r.Keywords)

	if len(r.Require) > 0 && string(r.Require) != "null" {
		v.Require = make(map[string]string)
		if err := json.Unmarshal(r.Require, &v.Require); err != nil {
			var anyObj map[string]any
			if json.Unmarshal(r.Require, &anyObj) == nil {
				for k, val := range anyObj {
					if s, ok := val.(string); ok {
						v.Require[k] = s
					}
				}
			}
		}
	}
	return nil
}

// stringList accepts either a JSON array of strings or a single string.
func stringList(b json.RawMessage) []string {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	var list []string
	if json.Unmarshal(b, &list) == nil {
		return list
	}
	var single string
	if json.Unmarshal(b, &single) == nil && single != "" {
		return []string{single}
	}
	return nil
}

// SetBaseURL points the client at a mirror or a test server.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }
