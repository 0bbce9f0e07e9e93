package github

import (
	"regexp"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// Repository references come from package metadata, so they are checked
// before being placed in an API path.
var (
	ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoPattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateRepoRef reports whether owner/repo is a well-formed GitHub
// repository reference.
func ValidateRepoRef(owner, repo string) error {
	switch {
	case owner == "" || repo == "":
		return errs.New(errs.ErrCodeInvalidInput, "repository %q/%q: owner and name are required", owner, repo)
	case !ownerPattern.MatchString(owner):
		return errs.New(errs.ErrCodeInvalidInput, "invalid GitHub owner %q", owner)
	case !repoPattern.MatchString(repo), repo == ".", repo == "..":
		return errs.New(errs.ErrCodeInvalidInput, "invalid GitHub repository name %q", repo)
	}
	return nil
}
