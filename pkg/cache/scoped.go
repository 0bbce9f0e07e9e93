package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving separate key
// spaces to result sets that share one backend, for example runs with
// different confidence weights against the same Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default layout when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k ScopedKeyer) ResultKey(registry, name, version string) string {
	return k.prefix + k.inner.ResultKey(registry, name, version)
}
