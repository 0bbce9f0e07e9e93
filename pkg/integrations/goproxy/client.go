package goproxy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackrules/pkg/cache"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// ModuleInfo is one version of a Go module.
type ModuleInfo struct {
	Path         string            `json:"path"`
	Version      string            `json:"version"`
	Versions     []string          `json:"versions,omitempty"`     // Tagged, newest first
	Dependencies map[string]string `json:"dependencies,omitempty"` // Direct requirements only
	Time         time.Time         `json:"time,omitzero"`
}

// Repository guesses the source repository from the module path. Modules
// hosted on github.com map directly; golang.org/x modules map to their
// GitHub mirrors. Returns "" for vanity paths that cannot be resolved offline.
func (m *ModuleInfo) Repository() string {
	parts := strings.Split(m.Path, "/")
	switch {
	case len(parts) >= 3 && parts[0] == "github.com":
		return "https://github.com/" + parts[1] + "/" + parts[2]
	case len(parts) >= 3 && parts[0] == "golang.org" && parts[1] == "x":
		return "https://github.com/golang/" + parts[2]
	}
	return ""
}

// Client reads a Go module proxy. Safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient returns a client for proxy.golang.org whose responses are cached
// in backend for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy", cacheTTL, nil),
		baseURL: "https://proxy.golang.org",
	}
}

// FetchModule returns mod at version, resolving "" through @latest. The
// version list and go.mod are best effort: modules without a go.mod report
// no dependencies.
func (c *Client) FetchModule(ctx context.Context, mod, version string, refresh bool) (*ModuleInfo, error) {
	mod = strings.TrimSpace(mod)
	escaped, err := module.EscapePath(mod)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPackage, err, "invalid module path %q", mod)
	}
	key := mod
	if version != "" {
		key += "@" + version
	}

	var info ModuleInfo
	err = c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, mod, escaped, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, mod, escaped, version string, info *ModuleInfo) error {
	v, err := c.fetchInfo(ctx, mod, escaped, version)
	if err != nil {
		return err
	}

	*info = ModuleInfo{
		Path:    mod,
		Version: v.Version,
		Time:    v.Time,
	}
	var g errgroup.Group
	g.Go(func() error {
		info.Versions, _ = c.fetchList(ctx, escaped)
		return nil
	})
	g.Go(func() error {
		info.Dependencies, _ = c.fetchGoMod(ctx, escaped, v.Version)
		return nil
	})
	return g.Wait()
}

func (c *Client) fetchInfo(ctx context.Context, mod, escaped, version string) (*infoResponse, error) {
	url := fmt.Sprintf("%s/%s/@latest", c.baseURL, escaped)
	if version != "" {
		ev, err := module.EscapeVersion(version)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPackage, err, "invalid version %q", version)
		}
		url = fmt.Sprintf("%s/%s/@v/%s.info", c.baseURL, escaped, ev)
	}

	var data infoResponse
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: go module %s %s", err, mod, version)
		}
		return nil, err
	}
	return &data, nil
}

func (c *Client) fetchList(ctx context.Context, escaped string) ([]string, error) {
	body, err := c.GetText(ctx, fmt.Sprintf("%s/%s/@v/list", c.baseURL, escaped))
	if err != nil {
		return nil, err
	}
	versions := slices.DeleteFunc(strings.Fields(body), func(v string) bool { return !semver.IsValid(v) })
	semver.Sort(versions)
	slices.Reverse(versions)
	return versions, nil
}

func (c *Client) fetchGoMod(ctx context.Context, escaped, version string) (map[string]string, error) {
	ev, err := module.EscapeVersion(version)
	if err != nil {
		return nil, err
	}
	body, err := c.GetText(ctx, fmt.Sprintf("%s/%s/@v/%s.mod", c.baseURL, escaped, ev))
	if err != nil {
		return nil, err
	}
	return ParseGoModRequires("go.mod", []byte(body))
}

// ParseGoModRequires returns the direct requirements of a go.mod file,
// skipping "// indirect" entries.
func ParseGoModRequires(name string, data []byte) (map[string]string, error) {
	f, err := modfile.ParseLax(name, data, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "parse %s", name)
	}
	deps := make(map[string]string, len(f.Require))
	for _, r := range f.Require {
		if r.Indirect {
			continue
		}
		deps[r.Mod.Path] = r.Mod.Version
	}
	return deps, nil
}

type infoResponse struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// SetBaseURL points the client at a mirror or a test server.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }
