package deps

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/stackrules/pkg/cache"
)

// HTTPClient is the configuration surface fetchers share with
// integrations.Client.
type HTTPClient interface {
	SetKeyer(cache.Keyer)
	SetTimeout(time.Duration)
}

// Configure applies the key scheme and request timeout to a registry client.
func (o Options) Configure(c HTTPClient) {
	o = o.WithDefaults()
	c.SetKeyer(o.Keyer)
	c.SetTimeout(o.Timeout)
}

// FetchVersion resolves spec for registries whose version list comes with
// the package document.
//
// Latest specs and exact versions are fetched directly. Ranges fetch the
// latest release first, resolve spec against its version list, and refetch
// only when the match is an older release.
func FetchVersion[T any](spec string, fetch func(version string) (T, error), list func(T) (versions []string, latest string)) (T, error) {
	spec = strings.TrimSpace(spec)
	if IsLatest(spec) {
		return fetch("")
	}
	if exact, ok := exactVersion(spec); ok {
		return fetch(exact)
	}

	var zero T
	latest, err := fetch("")
	if err != nil {
		return zero, err
	}
	available, current := list(latest)
	v, err := ResolveVersion(spec, available, current)
	if err != nil {
		return zero, err
	}
	if v == current {
		return latest, nil
	}
	return fetch(v)
}

// exactVersion reports whether spec pins a single release ("1.2.3", "=1.2.3",
// "==1.2.3", "v1.2.3").
func exactVersion(spec string) (string, bool) {
	s := strings.TrimLeft(spec, "=")
	if strings.ContainsAny(s, " ,|<>^~*") {
		return "", false
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(s, "v")); err != nil {
		return "", false
	}
	return s, true
}
