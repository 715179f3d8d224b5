package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that applies config to the wrapped transport.
// It must be the innermost middleware. An *http.Transport is cloned before the
// change; any other RoundTripper is returned unchanged and keeps its own TLS setup.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		transport, ok := next.(*http.Transport)
		if !ok {
			return next
		}

		transport = transport.Clone()
		transport.TLSClientConfig = config

		return transport
	}
}

// ControllerTLS returns the TLS settings used to reach the controller.
// Certificate verification stays on unless insecureSkipVerify is set, which is
// meant for appliances still running their factory self-signed certificate.
func ControllerTLS(insecureSkipVerify bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // Opt-in, controlled by client configuration
	}
}
