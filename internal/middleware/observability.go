package middleware

import (
	"net/http"
	"time"

	"github.com/lexfrei/go-fortimanager/observability"
)

// Observability returns a middleware that logs each controller exchange with
// its JSON-RPC method and object url, and records it under the normalized route.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := t.logger.With(append(callFields(req),
		observability.Field{Key: "request_id", Value: req.Header.Get(RequestIDHeader)},
	)...)
	method, route := labels(req)

	log.Debug("controller request started")

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		log.Error("controller request failed",
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)
		t.metrics.RecordError("http_request", "NetworkError")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	status := observability.Field{Key: "status", Value: resp.StatusCode}
	took := observability.Field{Key: "duration", Value: duration}
	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn("controller request completed with error", status, took)
	} else {
		log.Debug("controller request completed", status, took)
	}

	t.metrics.RecordHTTPRequest(method, route, resp.StatusCode, duration)

	return resp, nil
}
