package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/stackrules/pkg/cache"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/httputil"
	"github.com/matzehuels/stackrules/pkg/observability"
)

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 32 << 20

// Client provides shared HTTP functionality for all registry API clients.
// It handles caching, retry logic, rate limiting and common request headers.
//
// A Client is safe for concurrent use once configured.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	retry     httputil.Policy
	limiter   *rate.Limiter
}

// NewClient creates a Client with the given cache and default headers.
// Cached responses are stored under namespace and expire after ttl.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and nil for c to
// disable caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		cache:     c,
		keyer:     cache.DefaultKeyer{},
		namespace: strings.TrimSuffix(namespace, ":"),
		ttl:       ttl,
		headers:   headers,
		retry:     httputil.DefaultPolicy,
	}
}

// SetHTTPClient replaces the underlying HTTP client, typically to change the
// per-request timeout.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// SetTimeout sets the per-request timeout of the underlying HTTP client.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
	}
}

// SetRetryPolicy changes how transient failures are retried.
func (c *Client) SetRetryPolicy(p httputil.Policy) { c.retry = p }

// SetRateLimit makes every request wait on l before it is sent. The limiter
// may be shared between clients.
func (c *Client) SetRateLimit(l *rate.Limiter) { c.limiter = l }

// SetKeyer changes how cache keys are derived (e.g. to scope them per team).
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

type refreshKey struct{}

// WithRefresh returns a context under which every [Client.Cached] call skips
// the cache read, as if called with refresh set. Fresh values are still
// written back.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// RefreshFrom reports whether ctx was derived from [WithRefresh].
func RefreshFrom(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, or ctx carries [WithRefresh], the cache is bypassed and
// fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Fetch is retried according to the client's retry policy.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	cacheKey := c.keyer.HTTPKey(c.namespace, key)
	if !refresh && !RefreshFrom(ctx) {
		if data, ok, _ := c.cache.Get(ctx, cacheKey); ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, "http")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := c.retry.Do(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, cacheKey, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers. Retries are the caller's concern
// (see [Client.Cached]).
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
// A body that is not valid JSON yields a PARSE_ERROR.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	data, err := c.GetBytes(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Wrap(errs.ErrCodeParse, err, "decode %s", url)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Useful for non-JSON endpoints like go.mod files or llms.txt manifests.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, err := c.GetBytes(ctx, url, nil)
	return string(data), err
}

// GetBytes performs an HTTP GET and returns the raw body.
func (c *Client) GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, transportError(ctx, err)
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			err = rateLimited(resp.Header.Get("Retry-After"))
		}
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// transportError classifies a failed round trip. Timeouts are retried unless
// the caller's own context is done.
func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return httputil.Retryable(fmt.Errorf("%w: %v", ErrTimeout, err))
	}
	return httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
}

func rateLimited(retryAfter string) error {
	secs, _ := strconv.Atoi(strings.TrimSpace(retryAfter))
	return httputil.Retryable(fmt.Errorf("%w: %w", ErrRateLimited, &errs.RateLimitedError{RetryAfter: secs}))
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrRateLimited, code))
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
