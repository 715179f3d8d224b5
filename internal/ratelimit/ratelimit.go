// Package ratelimit builds the optional client-side request limiter.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a token bucket allowing requestsPerMinute requests per
// minute with a burst of requestsPerMinute/60 (at least 1).
// It returns nil when requestsPerMinute is not positive, which disables limiting.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), max(requestsPerMinute/60, 1))
}
