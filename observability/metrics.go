package observability

import "time"

// Session lifecycle events passed to MetricsRecorder.RecordSessionEvent.
const (
	SessionEventLogin       = "login"
	SessionEventLoginFailed = "login_failed"
	SessionEventProbeFailed = "probe_failed"
	SessionEventLogout      = "logout"
)

// MetricsRecorder is an interface for recording client metrics.
// Implementations can use any metrics library (Prometheus, StatsD, etc.).
type MetricsRecorder interface {
	// RecordHTTPRequest records a single HTTP exchange with the controller.
	// method and path are the JSON-RPC method and normalized object url.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordDispatch records a JSON-RPC call. url is the normalized object path
	// and code is the status.code of the first result (or -1 when no result was decoded).
	RecordDispatch(method, url string, code int, duration time.Duration)

	// RecordRetry records a retry attempt; endpoint is the normalized object url.
	RecordRetry(attempt int, endpoint string)

	// RecordRateLimit records a rate limit wait event.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordSessionEvent records a session lifecycle event (see SessionEvent* constants).
	RecordSessionEvent(event string)

	// RecordError records an error occurrence.
	RecordError(operation, errorType string)
}

type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a metrics recorder that does nothing.
// It is the default when no recorder is configured.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordDispatch(string, string, int, time.Duration)    {}
func (m *noopMetricsRecorder) RecordRetry(int, string)                              {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordSessionEvent(string)                            {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}
