package response

import (
	"fmt"
)

// StatusError reports a failed HTTP exchange: a non-expected status code, or
// (with StatusCode 0) a connection failure or timeout.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("transport error: status=%d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport error: status=%d", e.StatusCode)
	case e.Err != nil:
		return "transport error: " + e.Err.Error()
	default:
		return "transport error"
	}
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// DecodeError reports an HTTP 200 response whose body is not a valid envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "protocol error"
	}

	return "protocol error: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
