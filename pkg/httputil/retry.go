package httputil

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// RetryableError marks a failure as transient. [Policy.Do] only retries
// errors that wrap one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a *RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err (or anything it wraps) is a *RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	Attempts int           // Total attempts including the first (minimum 1)
	Delay    time.Duration // Wait before the first retry; doubles afterwards
	MaxDelay time.Duration // Upper bound for any single wait, including Retry-After (0 = none)
}

// DefaultPolicy makes three attempts, waiting 1s then 2s, and never sleeps
// longer than 30s on a server's Retry-After.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts are spent, in which case the last error is returned. A
// [errs.RateLimitedError] in the chain replaces the backoff delay with the
// server's Retry-After. Cancelling ctx during a wait returns ctx.Err().
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	for i := range attempts {
		err := fn()
		if err == nil || !IsRetryable(err) || i == attempts-1 {
			return err
		}
		if err := sleep(ctx, p.wait(err, delay)); err != nil {
			return err
		}
		delay *= 2
	}
	return nil
}

func (p Policy) wait(err error, backoff time.Duration) time.Duration {
	d := backoff
	var rl *errs.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		d = time.Duration(rl.RetryAfter) * time.Second
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
