package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/lexfrei/go-fortimanager/internal/middleware"
)

func TestAuth(t *testing.T) {
	t.Parallel()

	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-API-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.Auth("X-API-Key", "secret")(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if gotHeader != "secret" {
		t.Errorf("header = %q, want %q", gotHeader, "secret")
	}
	if req.Header.Get("X-API-Key") != "" {
		t.Error("caller request was modified")
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.BearerToken("tok-123")(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if gotHeader != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotHeader, "Bearer tok-123")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid", func(t *testing.T) {
		t.Parallel()

		var gotID string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = r.Header.Get(middleware.RequestIDHeader)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		transport := middleware.RequestID()(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		resp.Body.Close()

		if _, err := uuid.Parse(gotID); err != nil {
			t.Errorf("request id %q is not a UUID: %v", gotID, err)
		}
	})

	t.Run("keeps caller id", func(t *testing.T) {
		t.Parallel()

		var gotID string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = r.Header.Get(middleware.RequestIDHeader)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		transport := middleware.RequestID()(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
		req.Header.Set(middleware.RequestIDHeader, "trace-1")
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		resp.Body.Close()

		if gotID != "trace-1" {
			t.Errorf("request id = %q, want %q", gotID, "trace-1")
		}
	})
}

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	t.Run("insecure reaches self-signed server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		transport := middleware.TLSConfig(middleware.ControllerTLS(true))(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		resp.Body.Close()
	})

	t.Run("verification rejects self-signed server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		transport := middleware.TLSConfig(middleware.ControllerTLS(false))(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodPost, server.URL, nil)
		resp, err := transport.RoundTrip(req)
		if err == nil {
			resp.Body.Close()
			t.Fatal("RoundTrip() error = nil, want certificate error")
		}
	})

	t.Run("does not mutate default transport", func(t *testing.T) {
		t.Parallel()

		_ = middleware.TLSConfig(middleware.ControllerTLS(true))(http.DefaultTransport)

		//nolint:forcetypeassert // http.DefaultTransport is always *http.Transport
		if cfg := http.DefaultTransport.(*http.Transport).TLSClientConfig; cfg != nil && cfg.InsecureSkipVerify {
			t.Error("http.DefaultTransport was modified")
		}
	})
}

func TestTLSConfigKeepsCustomRoundTripper(t *testing.T) {
	t.Parallel()

	custom := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	wrapped := middleware.TLSConfig(middleware.ControllerTLS(true))(custom)

	req, _ := http.NewRequest(http.MethodPost, "https://controller.invalid/jsonrpc", nil)
	resp, err := wrapped.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()
}
