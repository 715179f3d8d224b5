// Package retry holds the retry policy applied to transient controller failures.
package retry

import (
	"net/http"
	"slices"
	"strconv"
	"time"
)

const (
	// DefaultMaxAttempts is the default total number of attempts per request.
	DefaultMaxAttempts = 5
	// DefaultBackoffBase is the default wait before the first retry.
	DefaultBackoffBase = 1 * time.Second
	// MaxBackoff caps a single computed backoff.
	MaxBackoff = 30 * time.Second
)

// DefaultRetryableStatusCodes are the gateway-style failures a controller
// returns while it is restarting or overloaded.
var DefaultRetryableStatusCodes = []int{
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Policy describes how a request is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, the first one included.
	MaxAttempts int

	// BackoffBase is the wait before the first retry; it doubles on every further retry.
	BackoffBase time.Duration

	// RetryableStatusCodes lists the HTTP statuses that trigger a retry.
	RetryableStatusCodes []int
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:          DefaultMaxAttempts,
		BackoffBase:          DefaultBackoffBase,
		RetryableStatusCodes: slices.Clone(DefaultRetryableStatusCodes),
	}
}

// WithDefaults fills zero fields from DefaultPolicy.
// The status code list is copied so later changes to the caller's slice have no effect.
func (p Policy) WithDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = DefaultBackoffBase
	}
	if len(p.RetryableStatusCodes) == 0 {
		p.RetryableStatusCodes = DefaultRetryableStatusCodes
	}
	p.RetryableStatusCodes = slices.Clone(p.RetryableStatusCodes)

	return p
}

// ShouldRetry reports whether statusCode is in the retryable set.
func (p Policy) ShouldRetry(statusCode int) bool {
	return slices.Contains(p.RetryableStatusCodes, statusCode)
}

// Backoff returns the wait before retry number attempt (0-based):
// BackoffBase * 2^attempt, capped at MaxBackoff.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		return MaxBackoff
	}

	wait := p.BackoffBase * time.Duration(1<<attempt)
	if wait <= 0 || wait > MaxBackoff {
		return MaxBackoff
	}

	return wait
}

// ParseRetryAfter parses the Retry-After HTTP header and returns the duration to wait.
// Only the delay-seconds form is supported; anything else yields 0.
func ParseRetryAfter(retryAfterHeader string) time.Duration {
	if retryAfterHeader == "" {
		return 0
	}

	seconds, err := strconv.Atoi(retryAfterHeader)
	if err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return 0
}
