package javascript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations/npm"
)

const packument = `{
  "name": "react",
  "dist-tags": {"latest": "18.3.1"},
  "time": {"18.2.0": "2022-06-14T19:46:38.369Z", "18.3.1": "2024-04-26T16:42:56.524Z"},
  "versions": {
    "18.2.0": {"name": "react", "version": "18.2.0", "homepage": "https://react.dev/", "keywords": ["react"],
               "repository": {"type": "git", "url": "git+https://github.com/facebook/react.git"}},
    "18.3.1": {"name": "react", "version": "18.3.1", "homepage": "https://react.dev/", "keywords": ["react"],
               "maintainers": [{"name": "fb", "email": "opensource@fb.com"}],
               "repository": {"type": "git", "url": "git+https://github.com/facebook/react.git"}}
  }
}`

func testFetcher(t *testing.T) deps.Fetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/") != "react" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(packument))
	}))
	t.Cleanup(srv.Close)
	c := npm.NewClient(nil, 0)
	c.SetBaseURL(srv.URL)
	return fetcher{c}
}

func TestFetcher_FetchMetadata(t *testing.T) {
	f := testFetcher(t)

	tests := []struct {
		spec string
		want string
	}{
		{"", "18.3.1"},
		{"^18.2.0", "18.3.1"},
		{"18.2.0", "18.2.0"},
		{"~18.2", "18.2.0"},
	}
	for _, tt := range tests {
		meta, err := f.FetchMetadata(context.Background(), "react", tt.spec, false)
		if err != nil {
			t.Fatalf("FetchMetadata(%q): %v", tt.spec, err)
		}
		if meta.Version != tt.want {
			t.Errorf("FetchMetadata(%q).Version = %q, want %q", tt.spec, meta.Version, tt.want)
		}
		if meta.Registry != deps.RegistryNPM || meta.InferredFramework != "react" {
			t.Errorf("meta = %+v", meta)
		}
		if meta.RepositoryURL() != "https://github.com/facebook/react" {
			t.Errorf("RepositoryURL = %q", meta.RepositoryURL())
		}
	}
}

func TestFetcher_NotFound(t *testing.T) {
	f := testFetcher(t)
	_, err := f.FetchMetadata(context.Background(), "left-pad-nope", "", false)
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, err := f.FetchMetadata(context.Background(), "react", "^20", false); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unsatisfiable range, got %v", err)
	}
}

func TestFetcher_CanFetch(t *testing.T) {
	f := fetcher{}
	if !f.CanFetch("react", deps.RegistryNPM) || f.CanFetch("react", deps.RegistryJSR) || f.CanFetch("", deps.RegistryNPM) {
		t.Error("CanFetch mismatch")
	}
}
