package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

var fast = Policy{Attempts: 3, Delay: time.Millisecond}

func TestPolicyDo(t *testing.T) {
	permanent := errors.New("404")
	tests := []struct {
		name      string
		policy    Policy
		failures  int   // retryable failures before success
		permanent error // returned on the first call instead
		wantCalls int
		wantErr   string
	}{
		{"first try", fast, 0, nil, 1, ""},
		{"recovers", fast, 2, nil, 3, ""},
		{"exhausted", fast, 5, nil, 3, "attempt 3"},
		{"permanent", fast, 0, permanent, 1, "404"},
		{"zero attempts runs once", Policy{}, 5, nil, 1, "attempt 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := tt.policy.Do(context.Background(), func() error {
				calls++
				if tt.permanent != nil {
					return tt.permanent
				}
				if calls <= tt.failures {
					return Retryable(fmt.Errorf("attempt %d", calls))
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if got := fmt.Sprint(err); (err == nil) != (tt.wantErr == "") || (err != nil && got != tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestPolicyDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 5, Delay: time.Hour}.Do(ctx, func() error {
		calls++
		cancel()
		return Retryable(errors.New("timeout"))
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}

func TestPolicyWait(t *testing.T) {
	p := Policy{Delay: time.Second, MaxDelay: 10 * time.Second}
	limited := func(secs int) error {
		return Retryable(fmt.Errorf("429: %w", &errs.RateLimitedError{RetryAfter: secs}))
	}
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"backoff", Retryable(errors.New("503")), time.Second},
		{"retry-after", limited(4), 4 * time.Second},
		{"retry-after capped", limited(120), 10 * time.Second},
		{"no hint", limited(0), time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.wait(tt.err, time.Second); got != tt.want {
				t.Errorf("wait() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	inner := errors.New("inner")
	err := fmt.Errorf("wrapped: %w", Retryable(inner))
	if !IsRetryable(err) || !errors.Is(err, inner) {
		t.Errorf("wrapping lost: retryable=%v is=%v", IsRetryable(err), errors.Is(err, inner))
	}
	if IsRetryable(inner) {
		t.Error("plain errors are not retryable")
	}
}
