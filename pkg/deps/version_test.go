package deps

import (
	"errors"
	"slices"
	"testing"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

func TestResolveVersion(t *testing.T) {
	available := []string{"17.0.2", "18.0.0", "18.2.0", "18.3.1", "19.0.0-rc.1", "19.0.0"}

	tests := []struct {
		name    string
		spec    string
		latest  string
		want    string
		wantErr errs.Code
	}{
		{"empty is latest", "", "19.0.0", "19.0.0", ""},
		{"latest tag", "latest", "19.0.0", "19.0.0", ""},
		{"star", "*", "19.0.0", "19.0.0", ""},
		{"exact listed", "18.2.0", "19.0.0", "18.2.0", ""},
		{"exact with v", "v18.2.0", "19.0.0", "18.2.0", ""},
		{"caret", "^18.2.0", "19.0.0", "18.3.1", ""},
		{"tilde", "~18.2", "19.0.0", "18.2.0", ""},
		{"range", ">=17 <18", "19.0.0", "17.0.2", ""},
		{"latest satisfies", "^19", "19.0.0", "19.0.0", ""},
		{"pep 440 equality", "==18.0.0", "19.0.0", "18.0.0", ""},
		{"composer alternatives", "^17.0|^18.0", "19.0.0", "18.3.1", ""},
		{"npm alternatives", "^16 || ^17", "19.0.0", "17.0.2", ""},
		{"unsatisfiable", "^20", "19.0.0", "", errs.ErrCodeNotFound},
		{"exact unpublished", "16.0.0", "19.0.0", "", errs.ErrCodeNotFound},
		{"non-semver passthrough", "next", "19.0.0", "next", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVersion(tt.spec, available, tt.latest)
			if tt.wantErr != "" {
				if !errs.Is(err, tt.wantErr) {
					t.Fatalf("ResolveVersion(%q) err = %v, want %s", tt.spec, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveVersion(%q) error: %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("ResolveVersion(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolveVersionWithoutList(t *testing.T) {
	// Registries without a version list get the spec verbatim.
	got, err := ResolveVersion("1.2.3", nil, "2.0.0")
	if err != nil || got != "1.2.3" {
		t.Errorf("exact without list = %q, %v", got, err)
	}
	got, err = ResolveVersion("^1", nil, "2.0.0")
	if err != nil || got != "2.0.0" {
		t.Errorf("range without list = %q, %v; want latest", got, err)
	}
}

func TestIsLatest(t *testing.T) {
	for _, v := range []string{"", " ", "latest", "LATEST", "*"} {
		if !IsLatest(v) {
			t.Errorf("IsLatest(%q) = false", v)
		}
	}
	for _, v := range []string{"1.0.0", "^1"} {
		if IsLatest(v) {
			t.Errorf("IsLatest(%q) = true", v)
		}
	}
}

type fakeRelease struct {
	version  string
	versions []string
}

func TestFetchVersion(t *testing.T) {
	releases := map[string]fakeRelease{
		"":       {"2.1.0", []string{"1.0.0", "1.4.2", "2.0.0", "2.1.0"}},
		"2.1.0":  {"2.1.0", nil},
		"1.4.2":  {"1.4.2", nil},
		"1.0.0":  {"1.0.0", nil},
		"v1.0.0": {"v1.0.0", nil},
	}
	list := func(r fakeRelease) ([]string, string) { return r.versions, r.version }

	tests := []struct {
		spec      string
		want      string
		wantCalls []string
	}{
		{"", "2.1.0", []string{""}},
		{"latest", "2.1.0", []string{""}},
		{"1.0.0", "1.0.0", []string{"1.0.0"}},
		{"==1.0.0", "1.0.0", []string{"1.0.0"}},
		{"v1.0.0", "v1.0.0", []string{"v1.0.0"}},
		{"^2", "2.1.0", []string{""}},
		{"^1.2", "1.4.2", []string{"", "1.4.2"}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			var calls []string
			fetch := func(v string) (fakeRelease, error) {
				calls = append(calls, v)
				r, ok := releases[v]
				if !ok {
					return fakeRelease{}, errors.New("unknown version " + v)
				}
				return r, nil
			}
			got, err := FetchVersion(tt.spec, fetch, list)
			if err != nil {
				t.Fatalf("FetchVersion(%q): %v", tt.spec, err)
			}
			if got.version != tt.want {
				t.Errorf("FetchVersion(%q) = %q, want %q", tt.spec, got.version, tt.want)
			}
			if !slices.Equal(calls, tt.wantCalls) {
				t.Errorf("fetch calls = %q, want %q", calls, tt.wantCalls)
			}
		})
	}
}

func TestFetchVersionUnsatisfiable(t *testing.T) {
	fetch := func(v string) (fakeRelease, error) {
		return fakeRelease{"2.1.0", []string{"2.0.0", "2.1.0"}}, nil
	}
	_, err := FetchVersion("^3", fetch, func(r fakeRelease) ([]string, string) { return r.versions, r.version })
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
