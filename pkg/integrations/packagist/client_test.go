package packagist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/httputil"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

const consoleDoc = `{
  "minified": "composer/2.0",
  "packages": {
    "symfony/console": [
      {
        "name": "symfony/console",
        "version": "v7.0.1",
        "description": "Eases the creation of beautiful and testable command line interfaces",
        "homepage": "https://symfony.com",
        "keywords": ["cli", "console"],
        "license": ["MIT"],
        "time": "2023-12-01T10:00:00+00:00",
        "authors": [{"name": "Fabien Potencier"}],
        "source": {"url": "https://github.com/symfony/console.git"},
        "require": {"php": ">=8.2", "ext-mbstring": "*", "symfony/string": "^6.4|^7.0"}
      },
      {
        "version": "v7.0.0-dev"
      },
      {
        "version": "v6.4.0",
        "time": "2023-11-29T10:00:00+00:00",
        "require": {"php": ">=8.1", "symfony/polyfill-mbstring": "~1.0"},
        "keywords": "__unset"
      }
    ]
  }
}`

func TestFetchPackageLatestStable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/p2/symfony/console.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(consoleDoc))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	info, err := c.FetchPackage(context.Background(), " Symfony/Console ", "", true)
	if err != nil {
		t.Fatalf("FetchPackage: %v", err)
	}
	if info.Name != "symfony/console" || info.Version != "v7.0.1" {
		t.Errorf("got %s@%s", info.Name, info.Version)
	}
	if info.Repository != "https://github.com/symfony/console" {
		t.Errorf("Repository = %q", info.Repository)
	}
	if info.License != "MIT" || info.Author != "Fabien Potencier" {
		t.Errorf("License/Author = %q/%q", info.License, info.Author)
	}
	if len(info.Dependencies) != 1 || info.Dependencies["symfony/string"] != "^6.4|^7.0" {
		t.Errorf("Dependencies = %v", info.Dependencies)
	}
	if len(info.Versions) != 2 {
		t.Errorf("Versions = %v, want dev versions excluded", info.Versions)
	}
	if info.PublishedAt.Year() != 2023 {
		t.Errorf("PublishedAt = %v", info.PublishedAt)
	}
}

func TestFetchPackageMinifiedInheritance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(consoleDoc))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	info, err := c.FetchPackage(context.Background(), "symfony/console", "6.4.0", true)
	if err != nil {
		t.Fatalf("FetchPackage: %v", err)
	}
	if info.Version != "v6.4.0" {
		t.Errorf("Version = %q", info.Version)
	}
	// description and source are inherited from the previous entry
	if info.Description == "" || info.Repository == "" {
		t.Errorf("inherited fields missing: %+v", info)
	}
	if len(info.Keywords) != 0 {
		t.Errorf("Keywords = %v, want unset", info.Keywords)
	}
	if _, ok := info.Dependencies["symfony/polyfill-mbstring"]; !ok {
		t.Errorf("Dependencies = %v", info.Dependencies)
	}
}

func TestFetchPackageUnknownVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(consoleDoc))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPackage(context.Background(), "symfony/console", "1.0.0", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchPackageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPackage(context.Background(), "acme/missing", "", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchPackageInvalidName(t *testing.T) {
	_, err := NewClient(cache.NewNullCache(), time.Hour).FetchPackage(context.Background(), "monolog", "", true)
	if !errs.Is(err, errs.ErrCodeInvalidPackage) {
		t.Fatalf("expected INVALID_PACKAGE, got %v", err)
	}
}

func TestLatestStable(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{"skips release candidates", []string{"v8.0.0-RC1", "v7.1.2", "v7.2.0-beta1"}, "v7.1.2"},
		{"highest not first", []string{"2.9.0", "3.0.0", "dev-main"}, "3.0.0"},
		{"branch only", []string{"dev-main", "dev-2.x"}, "dev-main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := make([]p2Version, len(tt.versions))
			for i, v := range tt.versions {
				vs[i].Version = v
			}
			if got := latestStable(vs).Version; got != tt.want {
				t.Errorf("latestStable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterDeps(t *testing.T) {
	got := FilterPlatform(map[string]string{
		"php":                  ">=8.1",
		"ext-json":             "*",
		"lib-pcre":             "*",
		"composer-plugin-api":  "^2.0",
		"Monolog/Monolog":      "^3.0",
		"psr/log":              "^1|^2|^3",
		"composer-runtime-api": "^2",
	})
	if len(got) != 2 || got["monolog/monolog"] != "^3.0" || got["psr/log"] == "" {
		t.Errorf("FilterPlatform = %v", got)
	}
}

func testClient(url string) *Client {
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = url
	c.SetRetryPolicy(httputil.Policy{Attempts: 1})
	return c
}
