// Package testutil provides a scripted FortiManager JSON-RPC endpoint for tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Call is one JSON-RPC request as seen by the mock controller.
type Call struct {
	Method        string
	URL           string
	Session       string
	HasSession    bool
	Authorization string
	RequestID     string
	Params        []map[string]any
}

// Reply is what the mock controller writes back. A zero Status means 200.
type Reply struct {
	Status int
	Body   string
	Header http.Header
}

// Handler scripts the controller. n is the 1-based ordinal of the request
// across the whole server lifetime.
type Handler func(call Call, n int) Reply

// MockController is an httptest server speaking the /jsonrpc envelope.
type MockController struct {
	*httptest.Server

	mu    sync.Mutex
	calls []Call
}

// NewMockController starts a mock controller that is closed with the test.
func NewMockController(t *testing.T, handler Handler) *MockController {
	t.Helper()

	m := &MockController{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "JSON-RPC requests must be POST")
		assert.Equal(t, "/jsonrpc", r.URL.Path, "JSON-RPC requests must target /jsonrpc")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err, "Failed to read request body")

		call := parseCall(t, body)
		call.Authorization = r.Header.Get("Authorization")
		call.RequestID = r.Header.Get("X-Request-ID")

		m.mu.Lock()
		m.calls = append(m.calls, call)
		n := len(m.calls)
		m.mu.Unlock()

		reply := handler(call, n)
		for k, values := range reply.Header {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if reply.Status == 0 {
			reply.Status = http.StatusOK
		}
		w.WriteHeader(reply.Status)
		_, _ = w.Write([]byte(reply.Body))
	}))
	t.Cleanup(m.Close)

	return m
}

func parseCall(t *testing.T, body []byte) Call {
	t.Helper()

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw), "request body must be a JSON object")

	var call Call
	if v, ok := raw["method"]; ok {
		require.NoError(t, json.Unmarshal(v, &call.Method))
	}
	if v, ok := raw["params"]; ok {
		require.NoError(t, json.Unmarshal(v, &call.Params))
	}
	if v, ok := raw["session"]; ok {
		call.HasSession = true
		require.NoError(t, json.Unmarshal(v, &call.Session))
	}
	if len(call.Params) > 0 {
		if url, ok := call.Params[0]["url"].(string); ok {
			call.URL = url
		}
	}

	return call
}

// Calls returns a copy of the requests received so far.
func (m *MockController) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Call, len(m.calls))
	copy(out, m.calls)

	return out
}

// CountURL returns how many requests targeted url.
func (m *MockController) CountURL(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c.URL == url {
			n++
		}
	}

	return n
}

// ResultBody builds a single-result response envelope. data is omitted when nil.
func ResultBody(url string, code int, message string, data any) string {
	result := map[string]any{
		"status": map[string]any{"code": code, "message": message},
		"url":    url,
	}
	if data != nil {
		result["data"] = data
	}

	encoded, _ := json.Marshal(map[string]any{ //nolint:errchkjson // Test fixture of plain maps
		"id":     1,
		"result": []any{result},
	})

	return string(encoded)
}

// LoginBody is a successful /sys/login/user reply carrying session.
func LoginBody(session string) string {
	encoded, _ := json.Marshal(map[string]any{ //nolint:errchkjson // Test fixture of plain maps
		"id":      1,
		"result":  []any{map[string]any{"status": map[string]any{"code": 0, "message": "OK"}, "url": "/sys/login/user"}},
		"session": session,
	})

	return string(encoded)
}

// OK replies 200 with body.
func OK(body string) Reply {
	return Reply{Body: body}
}

// Status replies with an HTTP status and an empty JSON body.
func Status(code int) Reply {
	return Reply{Status: code, Body: "{}"}
}
