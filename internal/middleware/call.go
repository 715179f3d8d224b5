package middleware

import (
	"context"
	"net/http"

	"github.com/lexfrei/go-fortimanager/observability"
)

// Call identifies the JSON-RPC call carried by an HTTP request. Every call
// shares one HTTP path, so middlewares read it from the request context to
// tell a login from a status check or a device query.
type Call struct {
	// Method is the JSON-RPC method (get, exec, ...).
	Method string
	// URL is the object url of the first params entry.
	URL string
	// Route is URL with object names and ids replaced, bounded for metric labels.
	Route string
}

type callKey struct{}

// WithCall returns a context carrying call.
func WithCall(ctx context.Context, call Call) context.Context {
	return context.WithValue(ctx, callKey{}, call)
}

// CallFromContext returns the call stored by WithCall.
func CallFromContext(ctx context.Context) (Call, bool) {
	call, ok := ctx.Value(callKey{}).(Call)

	return call, ok
}

// labels returns the method and path to record req under: the JSON-RPC
// method and route when the request carries a Call, the HTTP ones otherwise.
func labels(req *http.Request) (string, string) {
	if call, ok := CallFromContext(req.Context()); ok {
		return call.Method, call.Route
	}

	return req.Method, req.URL.Path
}

// callFields returns log fields describing the JSON-RPC call of req.
func callFields(req *http.Request) []observability.Field {
	call, ok := CallFromContext(req.Context())
	if !ok {
		return []observability.Field{
			{Key: "method", Value: req.Method},
			{Key: "url", Value: req.URL.String()},
		}
	}

	return []observability.Field{
		{Key: "rpc_method", Value: call.Method},
		{Key: "object_url", Value: call.URL},
	}
}
