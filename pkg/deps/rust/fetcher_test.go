package rust

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations/crates"
)

const crateDoc = `{
  "crate": {"name": "serde", "max_version": "1.0.210", "max_stable_version": "1.0.210",
            "description": "A generic serialization/deserialization framework",
            "repository": "https://github.com/serde-rs/serde", "homepage": "https://serde.rs",
            "keywords": ["serde", "serialization"]},
  "versions": [
    {"num": "1.0.210", "license": "MIT OR Apache-2.0", "created_at": "2024-09-06T00:00:00Z"},
    {"num": "1.0.100", "license": "MIT OR Apache-2.0", "created_at": "2019-08-01T00:00:00Z"},
    {"num": "0.9.15", "license": "MIT/Apache-2.0", "created_at": "2017-01-01T00:00:00Z"}
  ]
}`

func testFetcher(t *testing.T) deps.Fetcher {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/crates/serde", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(crateDoc))
	})
	mux.HandleFunc("/crates/serde/owners", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"login":"dtolnay","name":"David Tolnay"},{"login":"oli-obk"}]}`))
	})
	mux.HandleFunc("/crates/serde/0.9.15/dependencies", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dependencies":[{"crate_id":"serde_derive","req":"^0.9","kind":"normal"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := crates.NewClient(nil, 0)
	c.SetBaseURL(srv.URL)
	return fetcher{c}
}

func TestFetcher_FetchMetadata(t *testing.T) {
	f := testFetcher(t)

	tests := []struct {
		spec string
		want string
	}{
		{"", "1.0.210"},
		{"^1.0", "1.0.210"},
		{"1.0.100", "1.0.100"},
		{"^0.9", "0.9.15"},
	}
	for _, tt := range tests {
		meta, err := f.FetchMetadata(context.Background(), "serde", tt.spec, false)
		if err != nil {
			t.Fatalf("FetchMetadata(%q): %v", tt.spec, err)
		}
		if meta.Version != tt.want {
			t.Errorf("FetchMetadata(%q).Version = %q, want %q", tt.spec, meta.Version, tt.want)
		}
	}

	meta, err := f.FetchMetadata(context.Background(), "serde", "^0.9", false)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Dependencies["serde_derive"] != "^0.9" {
		t.Errorf("Dependencies = %v", meta.Dependencies)
	}
	if len(meta.Maintainers) != 2 || meta.Maintainers[1].Name != "oli-obk" {
		t.Errorf("Maintainers = %+v", meta.Maintainers)
	}
	if meta.RepositoryURL() != "https://github.com/serde-rs/serde" {
		t.Errorf("RepositoryURL() = %q", meta.RepositoryURL())
	}
	if meta.Registry != deps.RegistryCargo {
		t.Errorf("Registry = %s", meta.Registry)
	}
}

func TestFetcher_NotFound(t *testing.T) {
	f := testFetcher(t)
	if _, err := f.FetchMetadata(context.Background(), "nope", "", false); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
	if _, err := f.FetchMetadata(context.Background(), "serde", "^2", false); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("unsatisfiable err = %v, want NOT_FOUND", err)
	}
}
