// Package promrecorder implements observability.MetricsRecorder with Prometheus collectors.
package promrecorder

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexfrei/go-fortimanager/observability"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "fortimanager_client"

// Recorder records client metrics into Prometheus collectors.
type Recorder struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	retries          *prometheus.CounterVec
	rateLimitWait    *prometheus.HistogramVec
	sessionEvents    *prometheus.CounterVec
	errors           *prometheus.CounterVec
}

// Compile-time check to ensure Recorder implements observability.MetricsRecorder.
var _ observability.MetricsRecorder = (*Recorder)(nil)

// New creates a Recorder and registers its collectors with reg.
// An empty namespace falls back to DefaultNamespace.
func New(reg prometheus.Registerer, namespace string) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("prometheus registerer is required")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r := &Recorder{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests sent to the controller, by method, path and status code.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jsonrpc_calls_total",
			Help:      "JSON-RPC calls, by method, normalized object path and result status code.",
		}, []string{"method", "url", "code"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "jsonrpc_call_duration_seconds",
			Help:      "JSON-RPC call latency including session validation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "url"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retried HTTP requests.",
		}, []string{"endpoint"}),
		rateLimitWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting on the client-side rate limiter.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events (login, login_failed, probe_failed, logout).",
		}, []string{"event"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by operation and type.",
		}, []string{"operation", "type"}),
	}

	for _, c := range []prometheus.Collector{
		r.httpRequests, r.httpDuration, r.dispatches, r.dispatchDuration,
		r.retries, r.rateLimitWait, r.sessionEvents, r.errors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return r, nil
}

// RecordHTTPRequest implements observability.MetricsRecorder.
func (r *Recorder) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDispatch implements observability.MetricsRecorder.
func (r *Recorder) RecordDispatch(method, url string, code int, duration time.Duration) {
	r.dispatches.WithLabelValues(method, url, strconv.Itoa(code)).Inc()
	r.dispatchDuration.WithLabelValues(method, url).Observe(duration.Seconds())
}

// RecordRetry implements observability.MetricsRecorder.
func (r *Recorder) RecordRetry(_ int, endpoint string) {
	r.retries.WithLabelValues(endpoint).Inc()
}

// RecordRateLimit implements observability.MetricsRecorder.
func (r *Recorder) RecordRateLimit(endpoint string, wait time.Duration) {
	r.rateLimitWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

// RecordSessionEvent implements observability.MetricsRecorder.
func (r *Recorder) RecordSessionEvent(event string) {
	r.sessionEvents.WithLabelValues(event).Inc()
}

// RecordError implements observability.MetricsRecorder.
func (r *Recorder) RecordError(operation, errorType string) {
	r.errors.WithLabelValues(operation, errorType).Inc()
}
