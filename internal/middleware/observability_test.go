package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lexfrei/go-fortimanager/internal/middleware"
	"github.com/lexfrei/go-fortimanager/observability"
)

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type logSink struct {
	mu      sync.Mutex
	entries []capturedLog
}

type captureLogger struct {
	sink   *logSink
	preset []observability.Field
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{sink: &logSink{}}
}

func (l *captureLogger) add(level, msg string, fields []observability.Field) {
	merged := make(map[string]any, len(l.preset)+len(fields))
	for _, f := range append(append([]observability.Field{}, l.preset...), fields...) {
		merged[f.Key] = f.Value
	}

	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, capturedLog{level: level, msg: msg, fields: merged})
	l.sink.mu.Unlock()
}

func (l *captureLogger) entries() []capturedLog {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	return append([]capturedLog(nil), l.sink.entries...)
}

func (l *captureLogger) Debug(msg string, f ...observability.Field) { l.add("debug", msg, f) }
func (l *captureLogger) Info(msg string, f ...observability.Field)  { l.add("info", msg, f) }
func (l *captureLogger) Warn(msg string, f ...observability.Field)  { l.add("warn", msg, f) }
func (l *captureLogger) Error(msg string, f ...observability.Field) { l.add("error", msg, f) }

//nolint:ireturn // Test double satisfies observability.Logger
func (l *captureLogger) With(fields ...observability.Field) observability.Logger {
	return &captureLogger{sink: l.sink, preset: append(append([]observability.Field{}, l.preset...), fields...)}
}

type httpRequestLabels struct {
	method string
	path   string
	status int
}

type httpRecorder struct {
	mu       sync.Mutex
	requests []httpRequestLabels
	retries  []string
	errors   []string
}

func (r *httpRecorder) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	r.requests = append(r.requests, httpRequestLabels{method: method, path: path, status: status})
	r.mu.Unlock()
}

func (r *httpRecorder) RecordRetry(_ int, endpoint string) {
	r.mu.Lock()
	r.retries = append(r.retries, endpoint)
	r.mu.Unlock()
}

func (r *httpRecorder) RecordError(_ string, errorType string) {
	r.mu.Lock()
	r.errors = append(r.errors, errorType)
	r.mu.Unlock()
}

func (r *httpRecorder) RecordDispatch(string, string, int, time.Duration) {}
func (r *httpRecorder) RecordRateLimit(string, time.Duration)             {}
func (r *httpRecorder) RecordSessionEvent(string)                         {}

var deviceCall = middleware.Call{
	Method: "get",
	URL:    "/dvmdb/adom/root/device/FGT-01",
	Route:  "/dvmdb/adom/:adom/device/:device",
}

func TestObservability(t *testing.T) {
	t.Parallel()

	t.Run("records completed request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		logger := newCaptureLogger()
		recorder := &httpRecorder{}
		transport := middleware.Observability(logger, recorder)(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodPost, server.URL+"/jsonrpc", nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		resp.Body.Close()

		if len(recorder.requests) != 1 || recorder.requests[0].status != http.StatusBadGateway {
			t.Errorf("recorded requests = %v, want [502]", recorder.requests)
		}

		var warned bool
		for _, e := range logger.entries() {
			if e.level == "warn" {
				warned = true
			}
		}
		if !warned {
			t.Error("expected a warning for a 5xx response")
		}
	})

	t.Run("records network error", func(t *testing.T) {
		t.Parallel()

		recorder := &httpRecorder{}
		failing := roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		})
		transport := middleware.Observability(nil, recorder)(failing)

		req, _ := http.NewRequest(http.MethodPost, "http://controller.invalid/jsonrpc", nil)
		resp, err := transport.RoundTrip(req)
		if err == nil {
			resp.Body.Close()
			t.Fatal("RoundTrip() error = nil, want error")
		}

		if len(recorder.errors) != 1 || recorder.errors[0] != "NetworkError" {
			t.Errorf("recorded errors = %v, want [NetworkError]", recorder.errors)
		}
	})

	t.Run("labels requests with the JSON-RPC call", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := newCaptureLogger()
		recorder := &httpRecorder{}
		transport := middleware.Observability(logger, recorder)(http.DefaultTransport)

		ctx := middleware.WithCall(context.Background(), deviceCall)
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, server.URL+"/jsonrpc", nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		resp.Body.Close()

		want := httpRequestLabels{method: "get", path: deviceCall.Route, status: http.StatusOK}
		if len(recorder.requests) != 1 || recorder.requests[0] != want {
			t.Errorf("recorded requests = %+v, want [%+v]", recorder.requests, want)
		}

		entries := logger.entries()
		if len(entries) == 0 {
			t.Fatal("expected log entries")
		}
		for _, e := range entries {
			if e.fields["rpc_method"] != "get" || e.fields["object_url"] != deviceCall.URL {
				t.Errorf("%q fields = %v, want rpc_method and object_url of the call", e.msg, e.fields)
			}
		}
	})
}
