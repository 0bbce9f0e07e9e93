package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrules/pkg/buildinfo"
	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/credentials"
	"github.com/matzehuels/stackrules/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackrules"

	// memoryCacheEntries bounds the in-process cache backend.
	memoryCacheEntries = 4096
)

// Cache backends selectable with --cache-backend or [cache] backend.
const (
	backendFile   = "file"
	backendMemory = "memory"
	backendRedis  = "redis"
	backendMongo  = "mongo"
	backendNone   = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configFile is set by the persistent --config flag.
	configFile string

	// secrets overrides the environment + file store chain, for tests.
	secrets credentials.Provider
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stackrules discovers coding rules for your dependencies",
		Long: `Stackrules reads your project manifests and discovers usage rules for each
dependency: llms.txt files published on project homepages, rule files checked
into source repositories, and, as a last resort, guidelines inferred from the
README by a language model.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/stackrules/config.toml)")

	// Register all subcommands
	root.AddCommand(c.discoverCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.credentialsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg CacheConfig) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache ready", "backend", cfg.backend(), "namespace", cfg.Namespace)
	return pipeline.NewRunner(backend, cfg.keyer(), c.Logger), nil
}

// newCache opens the cache backend named by cfg.
func newCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.backend() {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendMemory:
		return cache.NewMemoryCache(memoryCacheEntries)
	case backendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis cache needs a URL (set [cache] redis_url or %s)", envRedisURL)
		}
		return cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
	case backendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache needs a URI (set [cache] mongo_uri or %s)", envMongoURI)
		}
		return cache.NewMongoCache(ctx, cfg.MongoURI, appName, "")
	case backendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be one of: file, memory, redis, mongo, none)", cfg.Backend)
	}
}

// =============================================================================
// Credentials
// =============================================================================

// secretProvider returns the environment followed by the credential store.
func (c *CLI) secretProvider() credentials.Provider {
	if c.secrets != nil {
		return c.secrets
	}
	store, err := credentialStore()
	if err != nil {
		c.Logger.Debug("credential store unavailable", "err", err)
		return credentials.Env{}
	}
	return credentials.Chain{credentials.Env{}, store}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stackrules/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/stackrules/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
