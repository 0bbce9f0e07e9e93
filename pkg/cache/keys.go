package cache

import "strings"

// Keyer builds the storage keys used by the HTTP client layer and the
// discovery result cache. Keeping key construction in one place lets
// deployments scope keys (see [ScopedKeyer]) without touching callers.
type Keyer interface {
	// HTTPKey returns the key for a cached registry or forge response.
	HTTPKey(namespace, key string) string

	// ResultKey returns the key for a discovery result:
	// "{registry}:{name}:{version}". An empty version becomes "latest".
	ResultKey(registry, name, version string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:{namespace}:{key}".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ResultKey returns "{registry}:{name}:{version}".
func (DefaultKeyer) ResultKey(registry, name, version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		version = "latest"
	}
	return registry + ":" + name + ":" + version
}
