package deps

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
)

const (
	DefaultCacheTTL = 24 * time.Hour   // Default HTTP cache duration
	DefaultTimeout  = 10 * time.Second // Default per-request registry timeout
)

// Options configures how registry fetchers are constructed.
type Options struct {
	Cache    cache.Cache   // HTTP response cache (nil disables caching)
	Keyer    cache.Keyer   // Cache key scheme (default: cache.DefaultKeyer)
	CacheTTL time.Duration // HTTP cache duration (default: 24h)
	Timeout  time.Duration // Per-request timeout (default: 10s)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// RegistryType identifies a package registry. The set is closed: every
// dependency resolves to exactly one of these values.
type RegistryType string

const (
	RegistryNPM      RegistryType = "npm"
	RegistryJSR      RegistryType = "jsr"
	RegistryPyPI     RegistryType = "pypi"
	RegistryCargo    RegistryType = "cargo"
	RegistryGo       RegistryType = "go"
	RegistryComposer RegistryType = "composer"
)

// RegistryTypes lists every supported registry in a stable order.
var RegistryTypes = []RegistryType{
	RegistryNPM, RegistryJSR, RegistryPyPI, RegistryCargo, RegistryGo, RegistryComposer,
}

var registryAliases = map[string]RegistryType{
	"npm":        RegistryNPM,
	"node":       RegistryNPM,
	"javascript": RegistryNPM,
	"jsr":        RegistryJSR,
	"deno":       RegistryJSR,
	"pypi":       RegistryPyPI,
	"python":     RegistryPyPI,
	"pip":        RegistryPyPI,
	"cargo":      RegistryCargo,
	"crates":     RegistryCargo,
	"crates.io":  RegistryCargo,
	"rust":       RegistryCargo,
	"go":         RegistryGo,
	"golang":     RegistryGo,
	"goproxy":    RegistryGo,
	"composer":   RegistryComposer,
	"packagist":  RegistryComposer,
	"php":        RegistryComposer,
}

// ParseRegistryType resolves a registry name or common alias
// ("crates", "packagist", "golang", ...) to a RegistryType.
func ParseRegistryType(s string) (RegistryType, error) {
	if t, ok := registryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown registry %q", s)
}

// Valid reports whether t is one of the supported registries.
func (t RegistryType) Valid() bool {
	return slices.Contains(RegistryTypes, t)
}

var sourceRegistries = map[string]RegistryType{
	"package.json":     RegistryNPM,
	"jsr.json":         RegistryJSR,
	"deno.json":        RegistryJSR,
	"deno.jsonc":       RegistryJSR,
	"requirements.txt": RegistryPyPI,
	"pyproject.toml":   RegistryPyPI,
	"pipfile":          RegistryPyPI,
	"cargo.toml":       RegistryCargo,
	"go.mod":           RegistryGo,
	"composer.json":    RegistryComposer,
}

// RegistryTypeFromSource maps a manifest path or file name to the registry its
// dependencies live in. Unknown sources default to npm.
func RegistryTypeFromSource(source string) RegistryType {
	name := strings.ToLower(filepath.Base(source))
	if t, ok := sourceRegistries[name]; ok {
		return t
	}
	if strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt") {
		return RegistryPyPI
	}
	return RegistryNPM
}

// DependencyType is the scope a manifest declares a dependency under.
type DependencyType string

const (
	DependencyRuntime  DependencyType = "runtime"
	DependencyDev      DependencyType = "dev"
	DependencyPeer     DependencyType = "peer"
	DependencyOptional DependencyType = "optional"
)

// Dependency is one entry read from a project manifest.
type Dependency struct {
	Name    string         `json:"name"`              // Package name as the registry knows it
	Version string         `json:"version,omitempty"` // Version or range; empty means latest
	Source  string         `json:"source"`            // Manifest the dependency was read from
	Type    DependencyType `json:"type,omitempty"`    // Declared scope
}

// Registry returns the registry the dependency resolves against.
func (d Dependency) Registry() RegistryType { return RegistryTypeFromSource(d.Source) }

// String returns "name@version" or just the name when unversioned.
func (d Dependency) String() string {
	if d.Version == "" {
		return d.Name
	}
	return d.Name + "@" + d.Version
}

// Repository is the source repository declared by a package.
type Repository struct {
	Type string `json:"type,omitempty"` // VCS type, usually "git"
	URL  string `json:"url"`            // Normalized https URL
}

// Maintainer is a person listed as maintaining a package.
type Maintainer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// PackageMetadata holds metadata fetched from a package registry.
//
// Metadata is immutable once returned by a [Fetcher]: callers pass and cache
// it by value and never modify its maps or slices.
type PackageMetadata struct {
	Name              string            `json:"name"`
	Version           string            `json:"version"`
	Description       string            `json:"description,omitempty"`
	Homepage          string            `json:"homepage,omitempty"`
	Repository        *Repository       `json:"repository,omitempty"`
	License           string            `json:"license,omitempty"`
	Keywords          []string          `json:"keywords,omitempty"`
	Maintainers       []Maintainer      `json:"maintainers,omitempty"`
	Dependencies      map[string]string `json:"dependencies,omitempty"`
	PeerDependencies  map[string]string `json:"peerDependencies,omitempty"`
	PublishedAt       time.Time         `json:"publishedAt,omitzero"`
	InferredFramework string            `json:"inferredFramework,omitempty"`
	Registry          RegistryType      `json:"registry"`
}

// NewPackageMetadata finalizes metadata built by a fetcher: it trims the
// homepage and derives InferredFramework from keywords and dependency names
// when the fetcher did not set one.
func NewPackageMetadata(m PackageMetadata) *PackageMetadata {
	m.Homepage = strings.TrimSpace(m.Homepage)
	if m.Repository != nil && m.Repository.URL == "" {
		m.Repository = nil
	}
	if m.InferredFramework == "" {
		m.InferredFramework = InferFramework(m.Name, m.Keywords, m.Dependencies, m.PeerDependencies)
	}
	return &m
}

// RepositoryURL returns the repository URL, or "" when none is declared.
func (m *PackageMetadata) RepositoryURL() string {
	if m == nil || m.Repository == nil {
		return ""
	}
	return m.Repository.URL
}

// Fetcher retrieves package metadata from one registry.
type Fetcher interface {
	// CanFetch reports whether this fetcher serves name in registry t.
	CanFetch(name string, t RegistryType) bool

	// FetchMetadata retrieves metadata for name at version. An empty version,
	// "latest" or "*" resolves to the registry's latest release; ranges are
	// resolved against the published versions where the registry lists them.
	// If refresh is true, cached HTTP responses are bypassed.
	//
	// Errors carry NOT_FOUND, NETWORK_ERROR, TIMEOUT or PARSE_ERROR codes.
	FetchMetadata(ctx context.Context, name, version string, refresh bool) (*PackageMetadata, error)
}
