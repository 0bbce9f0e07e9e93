package crates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// CrateInfo is one version of a crate.
type CrateInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Versions     []string          `json:"versions,omitempty"`     // Not yanked, newest first
	Dependencies map[string]string `json:"dependencies,omitempty"` // Normal, non-optional: name -> req
	Repository   string            `json:"repository,omitempty"`
	HomePage     string            `json:"homepage,omitempty"`
	Description  string            `json:"description,omitempty"`
	License      string            `json:"license,omitempty"` // SPDX expression of Version
	Keywords     []string          `json:"keywords,omitempty"`
	Owners       []Owner           `json:"owners,omitempty"`
	Downloads    int               `json:"downloads"`
	PublishedAt  time.Time         `json:"published_at,omitzero"`
}

// Owner is a crates.io user or team that owns a crate.
type Owner struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
}

// Client reads the crates.io API. Safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient returns a client whose responses are cached in backend for
// cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "crates", cacheTTL, map[string]string{"User-Agent": integrations.UserAgent}),
		baseURL: "https://crates.io/api/v1",
	}
}

// FetchCrate returns crate at version, or at max_stable_version when version
// is empty. Dependencies and owners come from secondary endpoints whose
// failures leave those fields empty.
func (c *Client) FetchCrate(ctx context.Context, crate, version string, refresh bool) (*CrateInfo, error) {
	key := crate
	if version != "" {
		key += "@" + version
	}

	var info CrateInfo
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, crate, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate, version string, info *CrateInfo) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, crate), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	if version == "" {
		version = data.Crate.MaxStableVersion
	}
	if version == "" {
		version = data.Crate.MaxVersion
	}

	*info = CrateInfo{
		Name:        data.Crate.Name,
		Version:     version,
		Description: data.Crate.Description,
		Repository:  integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:    data.Crate.HomePage,
		Keywords:    data.Crate.Keywords,
		Downloads:   data.Crate.Downloads,
	}

	found := false
	for _, v := range data.Versions {
		if !v.Yanked {
			info.Versions = append(info.Versions, v.Num)
		}
		if v.Num == version {
			found = true
			info.License = v.License
			info.PublishedAt = v.CreatedAt
		}
	}
	if !found && len(data.Versions) > 0 {
		return fmt.Errorf("%w: crate %s@%s", integrations.ErrNotFound, crate, version)
	}

	var g errgroup.Group
	g.Go(func() error {
		info.Dependencies, _ = c.fetchDeps(ctx, crate, version)
		return nil
	})
	g.Go(func() error {
		info.Owners, _ = c.fetchOwners(ctx, crate)
		return nil
	})
	return g.Wait()
}

func (c *Client) fetchDeps(ctx context.Context, crate, version string) (map[string]string, error) {
	url := fmt.Sprintf("%s/crates/%s/%s/dependencies", c.baseURL, crate, version)

	var data depsResponse
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}

	deps := make(map[string]string)
	for _, d := range data.Dependencies {
		if d.Kind == "normal" && !d.Optional {
			deps[d.CrateID] = d.Req
		}
	}
	return deps, nil
}

func (c *Client) fetchOwners(ctx context.Context, crate string) ([]Owner, error) {
	var data ownersResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s/owners", c.baseURL, crate), &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

type crateResponse struct {
	Crate struct {
		Name             string   `json:"name"`
		MaxVersion       string   `json:"max_version"`
		MaxStableVersion string   `json:"max_stable_version"`
		Description      string   `json:"description"`
		Repository       string   `json:"repository"`
		HomePage         string   `json:"homepage"`
		Keywords         []string `json:"keywords"`
		Downloads        int      `json:"downloads"`
	} `json:"crate"`
	Versions []versionEntry `json:"versions"`
}

type versionEntry struct {
	Num       string    `json:"num"`
	License   string    `json:"license"`
	Yanked    bool      `json:"yanked"`
	CreatedAt time.Time `json:"created_at"`
}

type depsResponse struct {
	Dependencies []depEntry `json:"dependencies"`
}

type depEntry struct {
	CrateID  string `json:"crate_id"`
	Req      string `json:"req"`
	Kind     string `json:"kind"`
	Optional bool   `json:"optional"`
}

type ownersResponse struct {
	Users []Owner `json:"users"`
}

// SetBaseURL points the client at a mirror or a test server.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }
