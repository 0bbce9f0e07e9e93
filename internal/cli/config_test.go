package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/pipeline"
	"github.com/matzehuels/stackrules/pkg/rules"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("", noEnv)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	want := defaultConfig()
	if cfg != want {
		t.Errorf("loadConfig() = %+v, want defaults %+v", cfg, want)
	}
	if cfg.Cache.backend() != backendFile {
		t.Errorf("backend = %q, want %q", cfg.Cache.backend(), backendFile)
	}
}

func TestLoadConfigFromXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("concurrency = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", noEnv)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
concurrency = 8
readme_budget = 2000
model = "gemini-2.5-pro"
min_confidence = 0.6

[weights]
direct = 0.95

[timeouts]
forge = "30s"
model = "1m30s"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
ttl = "168h"
namespace = "strict"
`)

	cfg, err := loadConfig(path, noEnv)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Concurrency != 8 || cfg.ReadmeBudget != 2000 || cfg.Model != "gemini-2.5-pro" || cfg.MinConfidence != 0.6 {
		t.Errorf("scalars = %+v", cfg)
	}
	// Unset weights and timeouts keep their defaults.
	wantWeights := rules.DefaultWeights()
	wantWeights.Direct = 0.95
	if cfg.Weights != wantWeights {
		t.Errorf("Weights = %+v, want %+v", cfg.Weights, wantWeights)
	}
	if cfg.Timeouts.Forge.Duration != 30*time.Second {
		t.Errorf("Timeouts.Forge = %v, want 30s", cfg.Timeouts.Forge.Duration)
	}
	if cfg.Timeouts.Model.Duration != 90*time.Second {
		t.Errorf("Timeouts.Model = %v, want 1m30s", cfg.Timeouts.Model.Duration)
	}
	if cfg.Timeouts.Registry.Duration != pipeline.DefaultRegistryTimeout {
		t.Errorf("Timeouts.Registry = %v, want default", cfg.Timeouts.Registry.Duration)
	}
	if cfg.Cache.backend() != backendRedis || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if got := cfg.Cache.keyer().ResultKey("npm", "react", ""); got != "strict:npm:react:latest" {
		t.Errorf("namespaced ResultKey = %q", got)
	}
	if cfg.Cache.TTL.Duration != 168*time.Hour {
		t.Errorf("Cache.TTL = %v, want 168h", cfg.Cache.TTL.Duration)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "concurency = 3\n", "unknown keys: concurency"},
		{"unknown nested key", "[cache]\nbackend = \"file\"\nhost = \"x\"\n", "cache.host"},
		{"bad duration", "[timeouts]\nforge = \"fast\"\n", "invalid duration"},
		{"negative duration", "[timeouts]\nforge = \"-1s\"\n", "must not be negative"},
		{"bad toml", "concurrency = \n", "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content), noEnv)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), noEnv)
	if err == nil {
		t.Fatal("explicit missing config should fail")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[cache]\nredis_url = \"redis://file:6379\"\n")
	env := map[string]string{
		envRedisURL: "redis://env:6379",
		envMongoURI: "mongodb://env:27017",
	}

	cfg, err := loadConfig(path, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.RedisURL != "redis://env:6379" {
		t.Errorf("RedisURL = %q, want env value", cfg.Cache.RedisURL)
	}
	if cfg.Cache.MongoURI != "mongodb://env:27017" {
		t.Errorf("MongoURI = %q, want env value", cfg.Cache.MongoURI)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinConfidence = 0.7
	cfg.Cache.TTL = duration{time.Hour}

	opts := cfg.pipelineOptions()
	opts.Packages = packagesOrFail(t, "npm", "react")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Concurrency != pipeline.DefaultConcurrency || opts.Model != pipeline.DefaultModel {
		t.Errorf("opts = %+v", opts)
	}
	if opts.MinConfidence != 0.7 || opts.ResultTTL != time.Hour {
		t.Errorf("MinConfidence = %v, ResultTTL = %v", opts.MinConfidence, opts.ResultTTL)
	}
	if opts.Timeouts.Model != pipeline.DefaultModelTimeout {
		t.Errorf("Timeouts.Model = %v", opts.Timeouts.Model)
	}
}

func TestLoadConfigZeroWeight(t *testing.T) {
	path := writeConfig(t, "[weights]\ninference = 0\n")
	cfg, err := loadConfig(path, noEnv)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	opts := cfg.pipelineOptions()
	opts.Packages = packagesOrFail(t, "npm", "react")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	want := rules.DefaultWeights()
	want.Inference = 0
	if opts.Weights != want {
		t.Errorf("Weights = %+v, want %+v", opts.Weights, want)
	}
}

func TestDiscoverFlagsOverrideOnlyWhenSet(t *testing.T) {
	var flags discoverFlags
	cmd := &cobra.Command{Use: "discover", RunE: func(*cobra.Command, []string) error { return nil }}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--model", "gemini-2.0-flash", "--no-cache"}); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Concurrency = 9 // from the config file
	flags.apply(&cfg, cmd)

	if cfg.Concurrency != 9 {
		t.Errorf("Concurrency = %d, unset flag must not override config", cfg.Concurrency)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want flag value", cfg.Model)
	}
	if cfg.Cache.backend() != backendNone {
		t.Errorf("backend = %q, --no-cache should select none", cfg.Cache.backend())
	}
}

func packagesOrFail(t *testing.T, registry string, specs ...string) []deps.Dependency {
	t.Helper()
	pkgs, err := packageInputs(registry, specs)
	if err != nil {
		t.Fatalf("packageInputs() error: %v", err)
	}
	return pkgs
}

func TestCacheKeyerDefault(t *testing.T) {
	if k := (CacheConfig{Namespace: "  "}).keyer(); k != nil {
		t.Errorf("blank namespace keyer = %T, want nil", k)
	}
}
