package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/pipeline"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// Environment variables that override config file values.
const (
	envRedisURL = "STACKRULES_REDIS_URL"
	envMongoURI = "STACKRULES_MONGO_URI"
)

// configFileName is looked up in configDir when --config is not given.
const configFileName = "config.toml"

// Config is the on-disk configuration. Flags override it per run.
//
//	concurrency = 8
//	model = "gemini-2.5-flash"
//	min_confidence = 0.6
//
//	[weights]
//	direct = 0.95
//	inference = 0    # 0 turns a source off; unset keys keep their defaults
//
//	[timeouts]
//	model = "90s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	Concurrency   int            `toml:"concurrency"`
	ReadmeBudget  int            `toml:"readme_budget"`
	Model         string         `toml:"model"`
	MinConfidence float64        `toml:"min_confidence"`
	Weights       rules.Weights  `toml:"weights"`
	Timeouts      TimeoutsConfig `toml:"timeouts"`
	Cache         CacheConfig    `toml:"cache"`
}

// TimeoutsConfig holds per-call timeouts as Go duration strings.
type TimeoutsConfig struct {
	Registry duration `toml:"registry"`
	Homepage duration `toml:"homepage"`
	Forge    duration `toml:"forge"`
	Model    duration `toml:"model"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	MongoURI string   `toml:"mongo_uri"`
	TTL      duration `toml:"ttl"`

	// Namespace separates result sets computed with different settings
	// (weights, model) that share one cache.
	Namespace string `toml:"namespace"`
}

// keyer returns the key scheme for the configured namespace; nil selects
// the default unprefixed keys.
func (c CacheConfig) keyer() cache.Keyer {
	ns := strings.TrimSpace(c.Namespace)
	if ns == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, ns+":")
}

// backend returns the normalized backend name, defaulting to file.
func (c CacheConfig) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return backendFile
	}
	return b
}

// duration decodes TOML strings such as "15s" or "1m30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", text)
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Concurrency:  pipeline.DefaultConcurrency,
		ReadmeBudget: pipeline.DefaultReadmeBudget,
		Model:        pipeline.DefaultModel,
		Weights:      rules.DefaultWeights(),
		Timeouts: TimeoutsConfig{
			Registry: duration{pipeline.DefaultRegistryTimeout},
			Homepage: duration{pipeline.DefaultHomepageTimeout},
			Forge:    duration{pipeline.DefaultForgeTimeout},
			Model:    duration{pipeline.DefaultModelTimeout},
		},
		Cache: CacheConfig{Backend: backendFile},
	}
}

// loadConfig layers defaults, the config file and the environment.
//
// An explicit path must exist; the default path is optional. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func loadConfig(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err == nil {
			path = filepath.Join(dir, configFileName)
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				sort.Strings(keys)
				return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		}
	}

	cfg.applyEnv(lookupEnv)
	return cfg, nil
}

// applyEnv overrides cache locations from the environment.
func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) {
	if lookupEnv == nil {
		return
	}
	if v, ok := lookupEnv(envRedisURL); ok && v != "" {
		c.Cache.RedisURL = v
	}
	if v, ok := lookupEnv(envMongoURI); ok && v != "" {
		c.Cache.MongoURI = v
	}
}

// pipelineOptions converts the configuration into pipeline options. Inputs
// and credentials are filled in by the caller.
func (c Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Concurrency:   c.Concurrency,
		ReadmeBudget:  c.ReadmeBudget,
		Model:         c.Model,
		Weights:       c.Weights,
		MinConfidence: c.MinConfidence,
		ResultTTL:     c.Cache.TTL.Duration,
		Timeouts: pipeline.Timeouts{
			Registry: c.Timeouts.Registry.Duration,
			Homepage: c.Timeouts.Homepage.Duration,
			Forge:    c.Timeouts.Forge.Duration,
			Model:    c.Timeouts.Model.Duration,
		},
	}
}
