package middleware

import (
	"maps"
	"net/http"
)

// Auth returns a middleware that sets a static authentication header on every request.
func Auth(headerName, headerValue string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &authTransport{
			next:        next,
			headerName:  headerName,
			headerValue: headerValue,
		}
	}
}

// BearerToken returns a middleware that sends "Authorization: Bearer <token>".
// This is how API-token administrators authenticate against FortiManager.
func BearerToken(token string) func(http.RoundTripper) http.RoundTripper {
	return Auth("Authorization", "Bearer "+token)
}

type authTransport struct {
	next        http.RoundTripper
	headerName  string
	headerValue string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = cloneRequest(req)
	req.Header.Set(t.headerName, t.headerValue)

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map,
// so middleware never modifies the caller's request.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
