// Package github provides an HTTP client for GitHub repository content.
//
// # Overview
//
// This package reads files from repositories hosted on GitHub
// (https://api.github.com). Rule discovery uses it to scan repositories for
// rule artifacts (.vibe/, .cursorrules, CLAUDE.md, ...) and to fetch READMEs
// for model inference.
//
// # Usage
//
//	client := github.NewContentClient(cache.NewNullCache(), token, time.Hour)
//
//	items, err := client.ListDirectory(ctx, "vercel", "next.js", ".vibe")
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // no rule directory
//	}
//
//	readme, err := client.GetReadme(ctx, "vercel", "next.js")
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # Rate Limiting
//
// Every request waits on a token-bucket limiter ([DefaultRateLimit]) owned
// by the client, so concurrent discovery workers share one budget. Replace it
// with SetRateLimit. HTTP 429 responses are retried after Retry-After.
//
// # Caching
//
// Listings and file contents are cached for the client's TTL. Missing paths
// are not cached.
//
// # Validation
//
// Owner and repository names are validated ([ValidateRepoRef]) before any
// request is built.
package github
