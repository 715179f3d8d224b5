package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestID returns a middleware that tags each request with a random UUID in
// RequestIDHeader unless the caller already set one. Retries of the same request
// keep the id, since this middleware sits outside the retry layer.
func RequestID() func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req = cloneRequest(req)
				req.Header.Set(RequestIDHeader, uuid.NewString())
			}

			//nolint:wrapcheck // Middleware passes through errors from next handler in chain
			return next.RoundTrip(req)
		})
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
