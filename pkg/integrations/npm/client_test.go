package npm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/httputil"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

const reactDoc = `{
  "name": "react",
  "dist-tags": {"latest": "18.3.1", "next": "19.0.0-rc"},
  "time": {"18.2.0": "2022-06-14T19:46:38.369Z", "18.3.1": "2024-04-26T16:42:51.000Z"},
  "versions": {
    "18.2.0": {
      "description": "React is a JavaScript library for building user interfaces.",
      "license": "MIT",
      "homepage": "https://reactjs.org/",
      "repository": {"type": "git", "url": "git+https://github.com/facebook/react.git", "directory": "packages/react"},
      "keywords": ["react"],
      "maintainers": [{"name": "gnoff", "email": "jcs.gnoff@gmail.com"}],
      "dependencies": {"loose-envify": "^1.1.0"}
    },
    "18.3.1": {
      "description": "React is a JavaScript library for building user interfaces.",
      "license": {"type": "MIT"},
      "homepage": "https://react.dev/",
      "repository": "github:facebook/react",
      "keywords": "react, ui",
      "maintainers": ["Sophie <sophie@example.com>"],
      "dependencies": {"loose-envify": "^1.1.0"},
      "peerDependencies": {"scheduler": "^0.23"}
    }
  }
}`

func TestClient_FetchPackument(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/react" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(reactDoc))
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	p, err := c.FetchPackument(context.Background(), "React", false)
	if err != nil {
		t.Fatalf("FetchPackument failed: %v", err)
	}
	if p.Latest != "18.3.1" {
		t.Errorf("Latest = %q", p.Latest)
	}
	versions := p.VersionList()
	sort.Strings(versions)
	if len(versions) != 2 || versions[0] != "18.2.0" {
		t.Errorf("VersionList() = %v", versions)
	}

	latest, err := p.Info("")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Repository != "https://github.com/facebook/react" {
		t.Errorf("Repository = %q", latest.Repository)
	}
	if latest.License != "MIT" || latest.HomePage != "https://react.dev/" {
		t.Errorf("License/HomePage = %q/%q", latest.License, latest.HomePage)
	}
	if len(latest.Keywords) != 2 || latest.Keywords[1] != "ui" {
		t.Errorf("Keywords = %v", latest.Keywords)
	}
	if len(latest.Maintainers) != 1 || latest.Maintainers[0].Email != "sophie@example.com" {
		t.Errorf("Maintainers = %+v", latest.Maintainers)
	}
	if latest.PeerDependencies["scheduler"] != "^0.23" {
		t.Errorf("PeerDependencies = %v", latest.PeerDependencies)
	}
	if latest.PublishedAt.Year() != 2024 {
		t.Errorf("PublishedAt = %v", latest.PublishedAt)
	}

	old, err := p.Info("18.2.0")
	if err != nil {
		t.Fatal(err)
	}
	if old.RepositoryType != "git" || old.Maintainers[0].Name != "gnoff" {
		t.Errorf("18.2.0 info = %+v", old)
	}

	if _, err := p.Info("1.0.0"); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Info(unpublished) = %v, want ErrNotFound", err)
	}

	// Second fetch is served from cache
	if _, err := c.FetchPackage(context.Background(), "react", "18.2.0", false); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
}

func TestClient_ScopedPackage(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"name":"@types/node","dist-tags":{"latest":"20.0.0"},"versions":{"20.0.0":{}}}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	info, err := c.FetchPackage(context.Background(), "@types/node", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/@types%2Fnode" {
		t.Errorf("request path = %q", gotPath)
	}
	if info.Version != "20.0.0" {
		t.Errorf("Version = %q", info.Version)
	}
}

func TestClient_FetchPackage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchPackage(context.Background(), "missing-pkg", "", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(reactDoc))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if _, err := c.FetchPackage(context.Background(), "react", "", true); err != nil {
		t.Fatalf("FetchPackage failed after retries: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3 (two retries)", hits.Load())
	}
}

func TestExtractField(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"MIT", "MIT"},
		{map[string]any{"type": "ISC"}, "ISC"},
		{map[string]any{"other": 1}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := extractField(tt.in, "type"); got != tt.want {
			t.Errorf("extractField(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(c, time.Hour)
	client.baseURL = serverURL
	client.SetRetryPolicy(httputil.Policy{Attempts: 3, Delay: time.Millisecond})
	return client
}
