// Package credentials resolves the secrets discovery needs: a GitHub token
// (optional, raises forge rate limits) and a Gemini API key (required for
// the inference tier).
//
// Secrets come from a [Provider]. Providers never fail: a secret that cannot
// be read is simply absent. Compose them with [Chain]:
//
//	store, _ := credentials.NewFileStore("")
//	p := credentials.Chain{credentials.Env{}, store}
//	token, ok := p.GetSecret(ctx, credentials.GitHubToken)
package credentials

import (
	"context"
	"os"
	"regexp"
	"strings"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// Well-known secret names.
const (
	GitHubToken  = "GITHUB_TOKEN"
	GeminiAPIKey = "GEMINI_API_KEY"
	GoogleAPIKey = "GOOGLE_API_KEY"
)

// Provider looks up secrets by name.
type Provider interface {
	// GetSecret returns the secret and whether it was found. Empty values
	// count as missing.
	GetSecret(ctx context.Context, name string) (string, bool)
}

// aliases lists fallback names tried when a secret is missing.
var aliases = map[string][]string{
	GeminiAPIKey: {GoogleAPIKey},
	GitHubToken:  {"GH_TOKEN"},
}

// Env reads secrets from environment variables.
type Env struct {
	// Lookup replaces os.LookupEnv, for tests.
	Lookup func(string) (string, bool)
}

func (e Env) GetSecret(_ context.Context, name string) (string, bool) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, n := range append([]string{name}, aliases[name]...) {
		if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Static serves a fixed set of secrets.
type Static map[string]string

func (s Static) GetSecret(_ context.Context, name string) (string, bool) {
	v, ok := s[name]
	return v, ok && v != ""
}

// Chain consults providers in order and returns the first secret found.
type Chain []Provider

func (c Chain) GetSecret(ctx context.Context, name string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if v, ok := p.GetSecret(ctx, name); ok {
			return v, true
		}
	}
	return "", false
}

var nameRE = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,63}$`)

// ValidateName checks that name is an upper-case environment-style
// identifier, which also makes it safe as a file name.
func ValidateName(name string) error {
	if !nameRE.MatchString(name) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid secret name %q: use upper-case letters, digits and underscores", name)
	}
	return nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", 8) + secret[len(secret)-4:]
}

var (
	_ Provider = Env{}
	_ Provider = Static(nil)
	_ Provider = Chain(nil)
	_ Provider = (*FileStore)(nil)
)
