package deps

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// IsLatest reports whether version asks for the registry's latest release.
func IsLatest(version string) bool {
	switch strings.TrimSpace(strings.ToLower(version)) {
	case "", "latest", "*", "x":
		return true
	}
	return false
}

// ResolveVersion picks the version to fetch for the requested spec.
//
//   - empty, "latest" or "*": latest
//   - an exact version present in available: used verbatim
//   - a semver range ("^18.2.0", "~1.2", ">=2 <3"): highest matching
//     available version, preferring stable releases
//
// A spec that is neither listed nor a parseable range is returned as-is so
// registries that do not publish version lists can still be queried.
// Returns a NOT_FOUND error when a valid range matches nothing.
func ResolveVersion(spec string, available []string, latest string) (string, error) {
	spec = strings.TrimSpace(spec)
	if IsLatest(spec) {
		return latest, nil
	}
	spec = strings.TrimPrefix(spec, "npm:")
	if slices.Contains(available, spec) {
		return spec, nil
	}
	if v, err := semver.StrictNewVersion(strings.TrimPrefix(spec, "v")); err == nil {
		// Exact but unlisted; let the registry decide.
		if len(available) == 0 {
			return spec, nil
		}
		for _, a := range available {
			if av, err := semver.NewVersion(a); err == nil && av.Equal(v) {
				return a, nil
			}
		}
		return "", errs.New(errs.ErrCodeNotFound, "version %s not published", spec)
	}

	c, err := semver.NewConstraint(normalizeConstraint(spec))
	if err != nil {
		return spec, nil
	}

	// Prefer latest when it satisfies the range, as npm does.
	if lv, err := semver.NewVersion(latest); err == nil && c.Check(lv) {
		return latest, nil
	}

	var best *semver.Version
	var bestRaw string
	for _, a := range available {
		v, err := semver.NewVersion(a)
		if err != nil || !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, a
		}
	}
	if best == nil {
		if len(available) == 0 {
			return latest, nil
		}
		return "", errs.New(errs.ErrCodeNotFound, "no version satisfies %s", spec)
	}
	return bestRaw, nil
}

// normalizeConstraint rewrites manifest range syntax the semver library does
// not accept: Python's "==" and "~=" operators and Composer's single "|".
// Comma lists (Cargo, PEP 440) already mean AND.
func normalizeConstraint(spec string) string {
	spec = strings.ReplaceAll(spec, "==", "=")
	spec = strings.ReplaceAll(spec, "~=", "~")
	spec = strings.ReplaceAll(spec, "||", "|")
	spec = strings.ReplaceAll(spec, "|", "||")
	return spec
}
