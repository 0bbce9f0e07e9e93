package rust

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stackrules/pkg/deps"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCargoToml_Supports(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"Cargo.toml", true},
		{"cargo.toml", true},
		{"Cargo.lock", false},
		{"package.json", false},
	}
	for _, tt := range tests {
		if got := (CargoToml{}).Supports(tt.filename); got != tt.want {
			t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestCargoToml_Read(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
tokio = "1"
rand = "~0.8"
local = { path = "../local" }
anyhow = { workspace = true }
http1 = { package = "http", version = "=0.2.12" }
forked = { git = "https://github.com/o/forked" }

[dev-dependencies]
criterion = "0.5"
serde = "1.0.100"

[build-dependencies]
cc = "*"

[target.'cfg(windows)'.dependencies]
winapi = "0.3"

[workspace.dependencies]
anyhow = "1.0.80"
`)

	got, err := CargoToml{}.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []deps.Dependency{
		{Name: "anyhow", Version: "^1.0.80", Source: path, Type: deps.DependencyRuntime},
		{Name: "forked", Source: path, Type: deps.DependencyRuntime},
		{Name: "http", Version: "=0.2.12", Source: path, Type: deps.DependencyRuntime},
		{Name: "rand", Version: "~0.8", Source: path, Type: deps.DependencyRuntime},
		{Name: "serde", Version: "^1.0", Source: path, Type: deps.DependencyRuntime},
		{Name: "tokio", Version: "^1", Source: path, Type: deps.DependencyRuntime},
		{Name: "winapi", Version: "^0.3", Source: path, Type: deps.DependencyRuntime},
		{Name: "cc", Source: path, Type: deps.DependencyDev},
		{Name: "criterion", Version: "^0.5", Source: path, Type: deps.DependencyDev},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d deps, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dep[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].Registry() != deps.RegistryCargo {
		t.Errorf("Registry() = %s, want cargo", got[0].Registry())
	}
}

func TestCargoToml_VirtualWorkspace(t *testing.T) {
	path := writeManifest(t, `
[workspace]
members = ["a", "b"]

[workspace.dependencies]
serde = "1"
`)
	got, err := CargoToml{}.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "serde" || got[0].Version != "^1" {
		t.Errorf("got %v, want serde ^1", got)
	}
}

func TestCargoToml_Invalid(t *testing.T) {
	path := writeManifest(t, "[dependencies\n")
	if _, err := (CargoToml{}).Read(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}
