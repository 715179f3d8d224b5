// Package observability provides interfaces for logging and metrics collection
// in the go-fortimanager library.
//
// This package defines standard interfaces that allow users to integrate their
// own logging and metrics implementations with the FortiManager JSON-RPC client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := myCustomLogger{} // implements observability.Logger
//	client, err := fortimanager.NewWithConfig(&fortimanager.ClientConfig{
//		Host:       "https://fmg.example.com",
//		Credential: fortimanager.TokenCredential{Token: token},
//		Logger:     logger,
//	})
//
// A zap adapter lives in the zaplogger subpackage.
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks client metrics:
//   - HTTP request count, status codes, and duration
//   - JSON-RPC calls by method, object path and result status code
//   - Retry attempts for transient 5xx responses
//   - Rate limiting events and wait times
//   - Session lifecycle events (login, failed probe, logout)
//   - Error occurrences by type
//
// A Prometheus implementation lives in the promrecorder subpackage.
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events.
package observability
