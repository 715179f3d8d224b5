package fortimanager

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-fortimanager/internal/httpclient"
	"github.com/lexfrei/go-fortimanager/internal/middleware"
	"github.com/lexfrei/go-fortimanager/internal/response"
)

// transport posts envelopes to the single JSON-RPC endpoint of a controller.
type transport struct {
	endpoint string
	client   *httpclient.Client
}

func newTransport(host string, client *httpclient.Client) *transport {
	return &transport{
		endpoint: host + "/jsonrpc",
		client:   client,
	}
}

// send performs one logical POST (retries happen below it in the middleware chain)
// bounded by timeout, and decodes the response envelope.
func (t *transport) send(ctx context.Context, req *Request, timeout time.Duration) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	objectURL := firstURL(req)
	ctx = middleware.WithCall(ctx, middleware.Call{
		Method: string(req.Method),
		URL:    objectURL,
		Route:  normalizeURL(objectURL),
	})

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrapf(err, "%s %s", req.Method, objectURL)}
	}

	return response.Decode[Response](resp, http.StatusOK)
}

func firstURL(req *Request) string {
	if len(req.Params) == 0 {
		return ""
	}

	return req.Params[0].URL()
}
