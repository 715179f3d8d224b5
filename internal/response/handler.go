// Package response turns raw HTTP responses from the controller into decoded envelopes.
package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// MaxBodySize bounds how much of a response body is read.
const MaxBodySize = 32 << 20

// Validator is implemented by envelope types that can check their own shape after decoding.
type Validator interface {
	Validate() error
}

// Decode reads and closes resp.Body, checks the status code and unmarshals the body into T.
//
// A status other than expectedStatus yields *StatusError; a body that cannot be read,
// is not valid JSON, or fails T's Validate method yields *DecodeError.
//
// Usage:
//
//	resp, err := httpClient.Do(req)
//	if err != nil { ... }
//	envelope, err := response.Decode[Envelope](resp, http.StatusOK)
func Decode[T any](resp *http.Response, expectedStatus int) (*T, error) {
	if resp == nil {
		return nil, &StatusError{Err: errors.New("nil HTTP response")}
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, &DecodeError{Err: errors.Wrap(err, "failed to read response body")}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &DecodeError{Err: errors.Wrap(err, "failed to decode response body")}
	}

	if v, ok := any(&out).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, &DecodeError{Err: err}
		}
	}

	return &out, nil
}
