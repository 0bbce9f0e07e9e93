package discovery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/matzehuels/stackrules/pkg/cache"
	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// DefaultHomepageTimeout bounds a single llms.txt request.
const DefaultHomepageTimeout = 10 * time.Second

// TextFetcher fetches a plain-text document. A missing document is reported
// with an error wrapping [integrations.ErrNotFound].
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// WebClient fetches documents from arbitrary hosts through the shared
// caching, retrying HTTP client.
type WebClient struct {
	*integrations.Client
}

// NewWebClient creates a WebClient caching bodies in backend. A timeout <= 0
// selects [DefaultHomepageTimeout].
func NewWebClient(backend cache.Cache, timeout time.Duration) *WebClient {
	if timeout <= 0 {
		timeout = DefaultHomepageTimeout
	}
	c := integrations.NewClient(backend, "web", cache.TTLHTTP, map[string]string{
		"User-Agent": integrations.UserAgent,
		"Accept":     "text/plain, text/markdown;q=0.9, */*;q=0.5",
	})
	c.SetTimeout(timeout)
	return &WebClient{Client: c}
}

// FetchText returns the body at url, which must be an http(s) URL.
func (c *WebClient) FetchText(ctx context.Context, url string) (string, error) {
	if err := errs.ValidateURL(url); err != nil {
		return "", err
	}
	var body string
	err := c.Cached(ctx, url, false, &body, func() error {
		s, err := c.GetText(ctx, url)
		body = s
		return err
	})
	return body, err
}

// HomepageStrategy looks for an llms.txt manifest at the apex domain of the
// package homepage. A found manifest becomes a single direct rule holding
// the whole body.
type HomepageStrategy struct {
	web     TextFetcher
	weights rules.Weights
}

// NewHomepageStrategy creates the homepage tier.
func NewHomepageStrategy(web TextFetcher, w rules.Weights) *HomepageStrategy {
	return &HomepageStrategy{web: web, weights: w.WithDefaults()}
}

func (s *HomepageStrategy) Tier() Tier { return TierHomepage }

func (s *HomepageStrategy) Discover(ctx context.Context, meta deps.PackageMetadata) TierResult {
	if strings.TrimSpace(meta.Homepage) == "" {
		return skipped(TierHomepage, errs.ErrCodeNotFound, "%s has no homepage", meta.Name)
	}
	apex, ok := ApexDomain(meta.Homepage)
	if !ok {
		return skipped(TierHomepage, errs.ErrCodeInvalidInput, "homepage %q has no host", meta.Homepage)
	}

	url := "https://" + apex + "/llms.txt"
	body, err := s.web.FetchText(ctx, url)
	if errors.Is(err, integrations.ErrNotFound) {
		return found(TierHomepage, nil)
	}
	if err != nil {
		return failed(TierHomepage, err)
	}
	if strings.TrimSpace(body) == "" || looksLikeHTML(body) {
		return found(TierHomepage, nil)
	}

	r := rules.New(meta.Name+" llms.txt", rules.SourceDirect, rules.CategoryDocumentation, body, s.weights)
	r.Description = "llms.txt published at " + url
	r.Content.Tags = []string{"llms.txt"}
	r.Targeting = targeting(meta)
	return found(TierHomepage, []rules.Rule{r})
}

// looksLikeHTML catches single-page apps that answer every path with their
// index page.
func looksLikeHTML(body string) bool {
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<head>")
}

var registryLanguages = map[deps.RegistryType]string{
	deps.RegistryNPM:      "javascript",
	deps.RegistryJSR:      "typescript",
	deps.RegistryPyPI:     "python",
	deps.RegistryCargo:    "rust",
	deps.RegistryGo:       "go",
	deps.RegistryComposer: "php",
}

func targeting(meta deps.PackageMetadata) rules.Targeting {
	var t rules.Targeting
	if l := registryLanguages[meta.Registry]; l != "" {
		t.Languages = []string{l}
	}
	if meta.InferredFramework != "" {
		t.Frameworks = []string{meta.InferredFramework}
	}
	return t
}
