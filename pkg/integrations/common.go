package integrations

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/matzehuels/stackrules/pkg/buildinfo"
	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// UserAgent identifies stackrules, with its version, to registries and forges.
var UserAgent = buildinfo.UserAgent()

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	// It is terminal and never retried.
	ErrNotFound = errs.New(errs.ErrCodeNotFound, "resource not found")

	// ErrNetwork is returned for HTTP failures (connection errors, 5xx responses).
	ErrNetwork = errs.New(errs.ErrCodeNetwork, "network error")

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errs.New(errs.ErrCodeTimeout, "request timed out")

	// ErrRateLimited is returned for HTTP 429 responses.
	ErrRateLimited = errs.New(errs.ErrCodeRateLimited, "rate limited")
)

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, git+ and shorthand prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	if ref, ok := ParseRepoURL(raw); ok {
		return ref.URL()
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// RepoRef identifies a repository on a hosting service.
type RepoRef struct {
	Host    string // Lowercased host without "www." (e.g., "github.com")
	Owner   string // Owner or organisation
	Name    string // Repository name without ".git"
	Subpath string // Directory inside the repository for monorepo packages (may be empty)
}

// URL returns the canonical https URL of the repository root.
func (r RepoRef) URL() string {
	return "https://" + r.Host + "/" + r.Owner + "/" + r.Name
}

// IsGitHub reports whether the repository is hosted on github.com.
func (r RepoRef) IsGitHub() bool { return r.Host == "github.com" }

var shorthandHosts = map[string]string{
	"github:":    "github.com",
	"gitlab:":    "gitlab.com",
	"bitbucket:": "bitbucket.org",
}

// ownerRepoRE matches the bare "owner/repo" shorthand npm accepts for GitHub.
var ownerRepoRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)

// ParseRepoURL extracts host, owner and repository from the URL forms found in
// package metadata:
//
//	https://github.com/o/r          http://github.com/o/r.git
//	git+https://github.com/o/r.git  git://github.com/o/r
//	ssh://git@github.com/o/r.git    git@github.com:o/r.git
//	github:o/r                      o/r
//	https://github.com/o/r/tree/main/packages/x   (Subpath "packages/x")
//
// Fragments (#readme, #v1.2.3) are ignored. Returns ok=false when raw does
// not name a repository.
func ParseRepoURL(raw string) (ref RepoRef, ok bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "git+")
	if s == "" {
		return RepoRef{}, false
	}

	for prefix, host := range shorthandHosts {
		if strings.HasPrefix(s, prefix) {
			s = "https://" + host + "/" + strings.TrimPrefix(s, prefix)
			break
		}
	}
	switch {
	case strings.HasPrefix(s, "git@"):
		host, path, found := strings.Cut(strings.TrimPrefix(s, "git@"), ":")
		if !found {
			return RepoRef{}, false
		}
		s = "https://" + host + "/" + path
	case !strings.Contains(s, "://") && ownerRepoRE.MatchString(s):
		s = "https://github.com/" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return RepoRef{}, false
	}
	switch u.Scheme {
	case "https", "http", "git", "ssh":
	default:
		return RepoRef{}, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, false
	}
	ref = RepoRef{
		Host:  strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."),
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}
	if ref.Name == "" {
		return RepoRef{}, false
	}
	// owner/repo/tree/<ref>/<subpath...>
	if len(parts) > 4 && (parts[2] == "tree" || parts[2] == "blob") {
		ref.Subpath = strings.Join(parts[4:], "/")
	}
	return ref, true
}

var repoURLKeys = []string{"Source", "Repository", "Code", "Homepage"}

// ExtractRepoURL finds GitHub/GitLab owner and repo from package URLs.
// It searches through urls using standard keys (Source, Repository, Code, Homepage)
// and falls back to homepage if no match is found. The re parameter should match
// URLs and capture owner (group 1) and repo name (group 2).
// Returns ok=false if no valid repository URL is found.
func ExtractRepoURL(re *regexp.Regexp, urls map[string]string, homepage string) (owner, repo string, ok bool) {
	match := func(u string) bool {
		if strings.Contains(u, "/sponsors/") {
			return false
		}
		if m := re.FindStringSubmatch(u); len(m) >= 3 {
			owner = m[1]
			repo = strings.TrimSuffix(m[2], ".git")
			ok = true
			return true
		}
		return false
	}

	for _, key := range repoURLKeys {
		if u, exists := urls[key]; exists && match(u) {
			return
		}
	}
	for _, u := range urls {
		if match(u) {
			return
		}
	}
	if homepage != "" {
		match(homepage)
	}
	return
}

// PathEscape escapes a package name for a URL path segment, keeping the
// leading "@" of scoped names readable (npm accepts "@scope%2Fname").
func PathEscape(name string) string {
	return strings.Replace(url.PathEscape(name), "%40", "@", 1)
}
