package github

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

// Default request budget for the GitHub REST API. Authenticated tokens get
// 5000 requests/hour; the limiter smooths bursts from concurrent discovery
// rather than enforcing the hourly quota.
const (
	DefaultRateLimit = rate.Limit(10)
	DefaultBurst     = 10
)

// ContentClient provides access to GitHub repository content: directory
// listings, READMEs and raw files. It handles caching, retries and a
// request rate limit shared by every goroutine using the client.
//
// All methods are safe for concurrent use by multiple goroutines.
type ContentClient struct {
	*integrations.Client
	baseURL string
}

// NewContentClient creates a content client. Pass an empty token for
// unauthenticated requests (60 requests/hour); pass cache.NewNullCache()
// to disable response caching.
func NewContentClient(backend cache.Cache, token string, cacheTTL time.Duration) *ContentClient {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"User-Agent":           integrations.UserAgent,
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	c := &ContentClient{
		Client:  integrations.NewClient(backend, "github", cacheTTL, headers),
		baseURL: "https://api.github.com",
	}
	c.SetRateLimit(rate.NewLimiter(DefaultRateLimit, DefaultBurst))
	return c
}
