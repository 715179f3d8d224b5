// Package middleware provides the http.RoundTripper layers of the controller client.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-fortimanager/internal/retry"
	"github.com/lexfrei/go-fortimanager/observability"
)

// RetryConfig configures the retry middleware.
type RetryConfig struct {
	Policy  retry.Policy
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// Retry returns a middleware that re-sends a request while the controller answers
// with a status from Policy.RetryableStatusCodes, up to Policy.MaxAttempts attempts.
//
// Network errors are returned immediately: the request may already have been
// applied by the controller, and JSON-RPC writes are not idempotent.
// When attempts run out, the last response is returned unchanged.
func Retry(cfg RetryConfig) func(http.RoundTripper) http.RoundTripper {
	cfg.Policy = cfg.Policy.WithDefaults()
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &retryTransport{
			next:    next,
			policy:  cfg.Policy,
			logger:  cfg.Logger,
			metrics: cfg.Metrics,
		}
	}
}

type retryTransport struct {
	next    http.RoundTripper
	policy  retry.Policy
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
	}

	for attempt := 0; ; attempt++ {
		attemptReq := cloneRequest(req)
		if bodyBytes != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			attemptReq.ContentLength = int64(len(bodyBytes))
		}

		resp, err := t.next.RoundTrip(attemptReq)
		if err != nil {
			//nolint:wrapcheck // Middleware passes through errors from next handler in chain
			return nil, err
		}

		if !t.policy.ShouldRetry(resp.StatusCode) || attempt+1 >= t.policy.MaxAttempts {
			return resp, nil
		}

		t.logger.Warn("retrying request", append(callFields(req),
			observability.Field{Key: "attempt", Value: attempt + 1},
			observability.Field{Key: "max_attempts", Value: t.policy.MaxAttempts},
			observability.Field{Key: "status", Value: resp.StatusCode},
		)...)
		_, route := labels(req)
		t.metrics.RecordRetry(attempt+1, route)

		wait := t.calculateWait(attempt, resp)

		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "context canceled during retry wait")
		}
	}
}

// calculateWait honours a Retry-After header when present and otherwise
// falls back to the policy's exponential backoff. Both are capped at retry.MaxBackoff.
func (t *retryTransport) calculateWait(attempt int, resp *http.Response) time.Duration {
	if wait := retry.ParseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
		t.logger.Debug("using Retry-After header",
			observability.Field{Key: "wait", Value: wait},
		)
		return min(wait, retry.MaxBackoff)
	}

	return t.policy.Backoff(attempt)
}
