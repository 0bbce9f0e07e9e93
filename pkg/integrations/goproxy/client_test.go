package goproxy

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/httputil"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

func TestParseGoModRequires(t *testing.T) {
	gomod := `module github.com/acme/api

go 1.22

require (
	github.com/go-chi/chi/v5 v5.0.12
	github.com/redis/go-redis/v9 v9.5.1
	golang.org/x/sys v0.18.0 // indirect
)

require github.com/google/uuid v1.6.0
`
	got, err := ParseGoModRequires("go.mod", []byte(gomod))
	if err != nil {
		t.Fatalf("ParseGoModRequires: %v", err)
	}
	want := map[string]string{
		"github.com/go-chi/chi/v5":     "v5.0.12",
		"github.com/redis/go-redis/v9": "v9.5.1",
		"github.com/google/uuid":       "v1.6.0",
	}
	if !maps.Equal(got, want) {
		t.Errorf("ParseGoModRequires() = %v, want %v", got, want)
	}
}

func TestParseGoModRequiresInvalid(t *testing.T) {
	_, err := ParseGoModRequires("go.mod", []byte("require (\n\tgithub.com/x\n"))
	if !errs.Is(err, errs.ErrCodeParse) {
		t.Errorf("expected PARSE_ERROR, got %v", err)
	}
}

func TestModuleInfoRepository(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"github.com/spf13/cobra", "https://github.com/spf13/cobra"},
		{"github.com/redis/go-redis/v9", "https://github.com/redis/go-redis"},
		{"golang.org/x/sync", "https://github.com/golang/sync"},
		{"go.mongodb.org/mongo-driver", ""},
	}
	for _, tt := range tests {
		m := ModuleInfo{Path: tt.path}
		if got := m.Repository(); got != tt.want {
			t.Errorf("Repository(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestClient_FetchModule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/github.com/example/mylib/@latest":
			json.NewEncoder(w).Encode(infoResponse{Version: "v1.2.3", Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
		case "/github.com/example/mylib/@v/v1.0.0.info":
			json.NewEncoder(w).Encode(infoResponse{Version: "v1.0.0"})
		case "/github.com/example/mylib/@v/list":
			w.Write([]byte("v1.0.0\nv1.2.3\nnot-a-version\nv1.10.0-rc.1\n"))
		case "/github.com/example/mylib/@v/v1.2.3.mod":
			w.Write([]byte(`module github.com/example/mylib

go 1.21

require github.com/pkg/errors v0.9.1
`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.FetchModule(context.Background(), "github.com/example/mylib", "", true)
	if err != nil {
		t.Fatalf("FetchModule failed: %v", err)
	}

	if info.Path != "github.com/example/mylib" {
		t.Errorf("expected path github.com/example/mylib, got %s", info.Path)
	}
	if info.Version != "v1.2.3" || info.Time.IsZero() {
		t.Errorf("expected version v1.2.3 with time, got %s %v", info.Version, info.Time)
	}
	if got := strings.Join(info.Versions, ","); got != "v1.10.0-rc.1,v1.2.3,v1.0.0" {
		t.Errorf("Versions = %s, want newest first without invalid tags", got)
	}
	if info.Dependencies["github.com/pkg/errors"] != "v0.9.1" {
		t.Errorf("Dependencies = %v", info.Dependencies)
	}

	pinned, err := c.FetchModule(context.Background(), "github.com/example/mylib", "v1.0.0", true)
	if err != nil {
		t.Fatalf("FetchModule(v1.0.0) failed: %v", err)
	}
	if pinned.Version != "v1.0.0" || len(pinned.Dependencies) != 0 {
		t.Errorf("pinned = %+v", pinned)
	}
}

func TestClient_FetchModule_EscapesUppercase(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotPath == "" {
			gotPath = r.URL.Path
		}
		json.NewEncoder(w).Encode(infoResponse{Version: "v0.1.0"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if _, err := c.FetchModule(context.Background(), "github.com/Azure/azure-sdk-for-go", "", true); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/github.com/!azure/azure-sdk-for-go/@latest" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestClient_FetchModule_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchModule(context.Background(), "github.com/missing/module", "", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = serverURL
	c.SetRetryPolicy(httputil.Policy{Attempts: 1})
	return c
}
