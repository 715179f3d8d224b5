package fortimanager

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-fortimanager/internal/response"
)

var (
	// ErrAuthenticationFailed matches every *AuthenticationError via errors.Is.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrInvalidMethod is returned for a method outside the supported set.
	ErrInvalidMethod = errors.New("invalid method")
	// ErrMissingURL is returned when params carry no "url".
	ErrMissingURL = errors.New("params must carry a url")
	// ErrClientClosed is returned by Dispatch after Close.
	ErrClientClosed = errors.New("client is closed")
)

// TransportError reports a non-200 HTTP status, or with StatusCode 0 a
// connection failure or timeout.
type TransportError = response.StatusError

// ProtocolError reports an HTTP 200 body that is not a valid envelope.
type ProtocolError = response.DecodeError

// AuthenticationError reports a rejected login. Code and Message come from the
// login result when the controller answered; Err holds the underlying failure otherwise.
type AuthenticationError struct {
	Code    int
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	switch {
	case e.Err != nil:
		return "authentication failed: " + e.Err.Error()
	case e.Message != "":
		return fmt.Sprintf("authentication failed: code=%d: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("authentication failed: code=%d", e.Code)
	}
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAuthenticationFailed) hold.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthenticationFailed //nolint:errorlint // Sentinel identity check
}

// BusinessError is a non-zero status code in an otherwise successful response.
// Dispatch never returns it; it is produced by Result.Err.
type BusinessError struct {
	URL     string
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s: code=%d: %s", e.URL, e.Code, e.Message)
}
