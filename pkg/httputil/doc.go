// Package httputil provides retry primitives shared by the registry, forge and
// homepage clients.
//
// # Retry
//
// [Policy.Do] re-runs an operation with exponential backoff, but only when
// the failure is wrapped in [RetryableError]. Clients wrap:
//
//   - Transport errors (connection refused, resets, client timeouts)
//   - 5xx server errors
//   - 429 rate limit responses
//
// Everything else (404, malformed JSON, 4xx) is returned immediately:
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// # Configuration
//
// [DefaultPolicy] makes at most three attempts (two retries) with a 1 second
// initial delay that doubles between attempts. A 429 carrying Retry-After
// waits that long instead, up to MaxDelay. Tests construct a [Policy] with
// millisecond delays.
package httputil
