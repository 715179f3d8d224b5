package fortimanager

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Well-known object paths used by the client itself.
const (
	URLLogin  = "/sys/login/user"
	URLLogout = "/sys/logout"
	URLStatus = "/sys/status"
	URLProxy  = "/sys/proxy/json"
)

// Params is one element of the request "params" list. It is passed through
// opaquely and must carry a "url" key.
type Params map[string]any

// URL returns the "url" entry, or "" when it is missing or not a string.
func (p Params) URL() string {
	url, _ := p["url"].(string)
	return url
}

// Request is the outbound JSON-RPC envelope.
type Request struct {
	Method  Method   `json:"method"`
	Params  []Params `json:"params"`
	Session string   `json:"session,omitempty"`
}

// Response is the inbound JSON-RPC envelope.
type Response struct {
	Result  []Result `json:"result"`
	Session string   `json:"session,omitempty"`
}

// Validate rejects envelopes without a result list.
func (r *Response) Validate() error {
	if len(r.Result) == 0 {
		return errors.New("response has no result")
	}

	return nil
}

// Status is the per-result outcome reported by the controller. Code 0 means success.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result is one element of the response "result" list.
// Raw holds the element exactly as received.
type Result struct {
	Status Status          `json:"status"`
	URL    string          `json:"url"`
	Data   json.RawMessage `json:"data,omitempty"`
	Raw    json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the verbatim element in Raw.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "failed to decode result")
	}

	*r = Result(decoded)
	r.Raw = append(json.RawMessage(nil), data...)

	return nil
}

// OK reports whether the controller accepted the operation.
func (r *Result) OK() bool {
	return r.Status.Code == 0
}

// Err returns a *BusinessError for a non-zero status code, nil otherwise.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}

	return &BusinessError{URL: r.URL, Code: r.Status.Code, Message: r.Status.Message}
}

// DecodeData unmarshals the "data" member into v. A missing or null member
// is an error.
func (r *Result) DecodeData(v any) error {
	if len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return errors.Newf("result for %s has no data", r.URL)
	}

	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Wrapf(err, "failed to decode data of %s", r.URL)
	}

	return nil
}
