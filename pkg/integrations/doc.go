// Package integrations provides HTTP clients for package registry, forge
// and model APIs.
//
// # Overview
//
// This package contains low-level API clients. Each service has its own
// subpackage:
//
//   - [npm]: Node Package Manager
//   - [jsr]: JavaScript Registry
//   - [pypi]: Python Package Index
//   - [crates]: Rust crates.io
//   - [goproxy]: Go Module Proxy
//   - [packagist]: PHP Composer packages
//   - [github]: GitHub repository content (directory listings, READMEs)
//   - [gemini]: Gemini structured completions
//
// # Client Pattern
//
// All registry clients follow a consistent pattern:
//
//	client := pypi.NewClient(backend, 24*time.Hour)            // cache + TTL
//	pkg, err := client.FetchPackage(ctx, "fastapi", "", false) // "" = latest, false = use cache
//
// Clients handle:
//   - HTTP requests with retry and optional rate limiting
//   - Response caching through any [cache.Cache] backend
//   - API-specific parsing and normalization
//
// # Errors
//
// Transport outcomes are reported with sentinel values that carry error
// codes: [ErrNotFound] (404/410, never retried), [ErrNetwork] (transport
// failures and 5xx, retried), [ErrTimeout] and [ErrRateLimited] (429,
// retried). Use errors.Is to test for them.
//
// # Repository URLs
//
// [ParseRepoURL] understands the URL shapes registries publish
// (git+https, git@host:, github: shorthand, /tree/ sub-paths, fragments)
// and [NormalizeRepoURL] reduces them to https://host/owner/repo.
//
// # Adding a New Registry
//
// To add support for a new package registry:
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Implement a Client with a FetchPackage method
//  4. Use [NewClient] for HTTP with caching
//  5. Wire into [deps] as a new language
//
// [npm]: github.com/matzehuels/stackrules/pkg/integrations/npm
// [jsr]: github.com/matzehuels/stackrules/pkg/integrations/jsr
// [pypi]: github.com/matzehuels/stackrules/pkg/integrations/pypi
// [crates]: github.com/matzehuels/stackrules/pkg/integrations/crates
// [goproxy]: github.com/matzehuels/stackrules/pkg/integrations/goproxy
// [packagist]: github.com/matzehuels/stackrules/pkg/integrations/packagist
// [github]: github.com/matzehuels/stackrules/pkg/integrations/github
// [gemini]: github.com/matzehuels/stackrules/pkg/integrations/gemini
// [cache.Cache]: github.com/matzehuels/stackrules/pkg/cache.Cache
// [deps]: github.com/matzehuels/stackrules/pkg/deps
package integrations
