// Package errors provides structured error types for stackrules.
//
// Every failure that can cross a package boundary carries a machine-readable
// [Code]. Discovery tiers use the code to decide whether a failure means
// "fall back to the next tier" or "this dependency is broken":
//   - NOT_FOUND: the package or resource does not exist (terminal, never retried)
//   - NETWORK_ERROR / TIMEOUT: transport failures (retried by the network client)
//   - PARSE_ERROR: a response body could not be decoded (terminal)
//   - CREDENTIAL_MISSING: a tier needs a secret that is not configured (tier skipped)
//   - MODEL_INFERENCE_ERROR: the model returned nothing usable (tier skipped)
//
// Codes survive fmt.Errorf("...: %w") wrapping:
//
//	err := errors.Wrap(errors.ErrCodeParse, jsonErr, "decode %s", url)
//	err = fmt.Errorf("npm react: %w", err)
//	errors.Is(err, errors.ErrCodeParse) // true
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeParse       Code = "PARSE_ERROR"

	// Tier skip reasons; never fatal for a dependency.
	ErrCodeCredentialMissing Code = "CREDENTIAL_MISSING"
	ErrCodeModelInference    Code = "MODEL_INFERENCE_ERROR"

	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Classify maps any error to a Code. Structured errors keep their own code;
// context deadlines and net timeouts become TIMEOUT, cancellations and
// anything unrecognised become INTERNAL_ERROR. A nil error has no code.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	if code := GetCode(err); code != "" {
		return code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrCodeTimeout
	}
	return ErrCodeInternal
}

// RateLimitedError carries the server's Retry-After hint, in seconds.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

// Code returns [ErrCodeRateLimited].
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
