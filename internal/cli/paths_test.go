package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	// Clear XDG_CACHE_HOME to test default behavior
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, ".config", appName); dir != expected {
		t.Errorf("configDir() = %q, want %q", dir, expected)
	}

	custom := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", custom)
	dir, err = configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	if expected := filepath.Join(custom, appName); dir != expected {
		t.Errorf("configDir() with XDG_CONFIG_HOME = %q, want %q", dir, expected)
	}
}

func TestCredentialStoreUnderConfigDir(t *testing.T) {
	home := isolate(t)

	store, err := credentialStore()
	if err != nil {
		t.Fatalf("credentialStore() error: %v", err)
	}
	if !strings.HasPrefix(store.Path(), filepath.Join(home, "config", appName)) {
		t.Errorf("store path %q not under %q", store.Path(), home)
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	files := []string{"a.json", "http/npm/b.json", "http/pypi/c.json", "results/d.json"}
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := clearDir(dir)
	if err != nil {
		t.Fatalf("clearDir() error: %v", err)
	}
	if count != len(files) {
		t.Errorf("clearDir() = %d, want %d", count, len(files))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir itself should remain: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir not empty: %v", entries)
	}

	if count, err := clearDir(filepath.Join(t.TempDir(), "missing")); err != nil || count != 0 {
		t.Errorf("clearDir(missing) = %d, %v; want 0, nil", count, err)
	}
}

func TestCacheCommands(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "cache", appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "entry.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "", "cache", "path"); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if err := execute(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "entry.json")); !os.IsNotExist(err) {
		t.Error("cache clear should remove cached entries")
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	isolate(t)
	custom := t.TempDir()
	path := writeConfig(t, "[cache]\ndir = \""+filepath.ToSlash(custom)+"\"\n")

	c := New(os.Stderr, LogInfo)
	c.configFile = path
	dir, err := c.fileCacheDir()
	if err != nil {
		t.Fatalf("fileCacheDir() error: %v", err)
	}
	if dir != filepath.ToSlash(custom) {
		t.Errorf("fileCacheDir() = %q, want %q", dir, custom)
	}
}
