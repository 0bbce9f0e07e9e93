package errors

import (
	"strings"
	"unicode"
)

const (
	maxPackageNameLen = 256
	maxRepoPathLen    = 500
)

// ValidatePackageName rejects names that are unsafe to interpolate into
// registry URLs or cache keys: empty or overlong names, control characters,
// backslashes, and "..", "//" sequences. Scoped npm/JSR names ("@scope/pkg")
// and Go module paths pass.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxPackageNameLen:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLen)
	case hasControl(name):
		return New(ErrCodeInvalidPackage, "package name %q contains control characters", name)
	}
	for _, seq := range []string{"..", "//", "\\"} {
		if strings.Contains(name, seq) {
			return New(ErrCodeInvalidPackage, "package name %q contains %q", name, seq)
		}
	}
	return nil
}

// ValidatePath checks a repository-relative path, such as a rule file named
// in a forge directory listing, before it is requested.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxRepoPathLen:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxRepoPathLen)
	case hasControl(path):
		return New(ErrCodeInvalidPath, "path contains control characters")
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path %q must be relative", path)
	case strings.Contains(path, ".."):
		return New(ErrCodeInvalidPath, "path %q contains ..", path)
	case strings.Contains(path, "\\"):
		return New(ErrCodeInvalidPath, "path %q contains a backslash", path)
	}
	return nil
}

// ValidateURL requires an http or https URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "https://") && !strings.HasPrefix(rawURL, "http://") {
		return New(ErrCodeInvalidInput, "URL %q must use http or https", rawURL)
	}
	return nil
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}
