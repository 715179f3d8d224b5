package fortimanager

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-fortimanager/internal/httpclient"
	"github.com/lexfrei/go-fortimanager/internal/middleware"
	"github.com/lexfrei/go-fortimanager/internal/ratelimit"
	"github.com/lexfrei/go-fortimanager/internal/retry"
	"github.com/lexfrei/go-fortimanager/observability"
)

const (
	// DefaultADOM is the administrative domain collaborators fall back to.
	DefaultADOM = "root"

	// DefaultRequestTimeout bounds every HTTP exchange.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultProxyTimeout is how long the controller waits on a managed device
	// during a /sys/proxy/json call.
	DefaultProxyTimeout = 60 * time.Second

	// DefaultAuthAttempts is one login try plus one retry.
	DefaultAuthAttempts = 2
)

// RetryPolicy controls how transient HTTP failures are retried.
type RetryPolicy = retry.Policy

// DefaultRetryPolicy returns 5 attempts with a 1s exponential backoff base on 502, 503 and 504.
func DefaultRetryPolicy() RetryPolicy {
	return retry.DefaultPolicy()
}

// Client talks to one controller. It is safe for concurrent use.
type Client struct {
	cfg        Config
	credential Credential
	transport  *transport
	session    *sessionManager
	httpClient *httpclient.Client
	logger     observability.Logger
	metrics    observability.MetricsRecorder

	closed    atomic.Bool
	closeOnce sync.Once
}

// Compile-time check to ensure Client implements Dispatcher interface.
var _ Dispatcher = (*Client)(nil)

// ClientConfig holds configuration for the controller client.
// NewWithConfig copies it; later changes have no effect on the client.
type ClientConfig struct {
	// Host is the controller address, e.g. "fmg.example.com" or "https://10.0.0.1:8443".
	// https:// is assumed when no scheme is given.
	Host string

	// Credential selects session or token authentication (required)
	Credential Credential

	// ADOM is the default administrative domain (defaults to "root")
	ADOM string

	// InsecureSkipVerify disables TLS certificate verification
	InsecureSkipVerify bool

	// RequestTimeout bounds each HTTP exchange (defaults to 30s)
	RequestTimeout time.Duration

	// ProxyTimeout is the default device wait of proxy calls (defaults to 60s)
	ProxyTimeout time.Duration

	// Retry sets the retry policy; zero fields take DefaultRetryPolicy values
	Retry RetryPolicy

	// AuthAttempts is the number of login attempts per authentication (defaults to 2)
	AuthAttempts int

	// RateLimitPerMinute limits outgoing requests; 0 means unlimited
	RateLimitPerMinute int

	// LogoutBeforeReauth logs the stale session out before logging in again
	LogoutBeforeReauth bool

	// HTTPClient is the base HTTP client (optional). It is copied, never modified.
	HTTPClient *http.Client

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for observability (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder
}

// Config is the immutable configuration of a Client.
type Config struct {
	Host               string
	ADOM               string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	ProxyTimeout       time.Duration
	Retry              RetryPolicy
	AuthAttempts       int
	RateLimitPerMinute int
	LogoutBeforeReauth bool
}

// New creates a client for host with default settings.
//
// Example:
//
//	client, err := fortimanager.New("fmg.example.com", fortimanager.SessionCredential{
//	    Username: "admin",
//	    Password: "secret",
//	})
func New(host string, credential Credential) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		Host:       host,
		Credential: credential,
	})
}

// NewWithConfig creates a client with custom configuration.
// No network traffic happens until the first Dispatch.
//
// Example:
//
//	client, err := fortimanager.NewWithConfig(&fortimanager.ClientConfig{
//	    Host:           "fmg.example.com",
//	    Credential:     fortimanager.TokenCredential{Token: token},
//	    ADOM:           "branch",
//	    RequestTimeout: 10 * time.Second,
//	    Logger:         myLogger,
//	})
func NewWithConfig(input *ClientConfig) (*Client, error) {
	if input == nil {
		return nil, errors.New("config is required")
	}

	cfg, err := resolveConfig(*input)
	if err != nil {
		return nil, err
	}

	logger := input.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := input.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	var rateLimit httpclient.Middleware
	if limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute); limiter != nil {
		rateLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: limiter,
			Logger:  logger,
			Metrics: metrics,
		})
	}

	// Order from outside to inside: RequestID -> Observability -> Auth -> RateLimit -> Retry -> TLS
	// Deadlines come from the request context, so the client-wide timeout is disabled.
	httpClient := httpclient.New(
		httpclient.WithHTTPClient(input.HTTPClient),
		httpclient.WithTimeout(0),
		httpclient.WithMiddleware(
			middleware.RequestID(),
			middleware.Observability(logger, metrics),
			input.Credential.middleware(),
			rateLimit,
			middleware.Retry(middleware.RetryConfig{
				Policy:  cfg.Retry,
				Logger:  logger,
				Metrics: metrics,
			}),
			middleware.TLSConfig(middleware.ControllerTLS(cfg.InsecureSkipVerify)),
		),
	)

	t := newTransport(cfg.Host, httpClient)

	return &Client{
		cfg:        cfg,
		credential: input.Credential,
		transport:  t,
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
		session: &sessionManager{
			credential:         input.Credential,
			transport:          t,
			timeout:            cfg.RequestTimeout,
			authAttempts:       cfg.AuthAttempts,
			logoutBeforeReauth: cfg.LogoutBeforeReauth,
			logger:             logger.With(observability.Field{Key: "component", Value: "session"}),
			metrics:            metrics,
		},
	}, nil
}

func resolveConfig(in ClientConfig) (Config, error) {
	if in.Credential == nil {
		return Config{}, errors.New("credential is required")
	}
	if err := in.Credential.validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid credential")
	}

	host, err := normalizeHost(in.Host)
	if err != nil {
		return Config{}, err
	}

	if in.RequestTimeout < 0 || in.ProxyTimeout < 0 {
		return Config{}, errors.New("timeouts must not be negative")
	}
	if in.AuthAttempts < 0 {
		return Config{}, errors.New("auth attempts must not be negative")
	}

	cfg := Config{
		Host:               host,
		ADOM:               in.ADOM,
		InsecureSkipVerify: in.InsecureSkipVerify,
		RequestTimeout:     in.RequestTimeout,
		ProxyTimeout:       in.ProxyTimeout,
		Retry:              in.Retry.WithDefaults(),
		AuthAttempts:       in.AuthAttempts,
		RateLimitPerMinute: in.RateLimitPerMinute,
		LogoutBeforeReauth: in.LogoutBeforeReauth,
	}

	// Set defaults
	if cfg.ADOM == "" {
		cfg.ADOM = DefaultADOM
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ProxyTimeout == 0 {
		cfg.ProxyTimeout = DefaultProxyTimeout
	}
	if cfg.AuthAttempts == 0 {
		cfg.AuthAttempts = DefaultAuthAttempts
	}

	return cfg, nil
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", errors.New("host is required")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return "", errors.Wrapf(err, "invalid host %q", host)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", errors.Newf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.Newf("invalid host %q", host)
	}

	return parsed.Scheme + "://" + parsed.Host + strings.TrimSuffix(parsed.Path, "/"), nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	cfg := c.cfg
	cfg.Retry = cfg.Retry.WithDefaults()

	return cfg
}

// Dispatch sends one JSON-RPC request and returns the first result.
//
// It logs in lazily, probes an existing session before use and re-authenticates
// when the controller no longer accepts it. A non-zero status code in the result
// is not an error here; use Result.Err to convert it.
//
// Errors: ErrInvalidMethod, ErrMissingURL, ErrClientClosed, *AuthenticationError,
// *TransportError and *ProtocolError.
func (c *Client) Dispatch(ctx context.Context, method Method, params Params) (*Result, error) {
	if !method.Valid() {
		return nil, errors.Wrapf(ErrInvalidMethod, "%q", string(method))
	}

	objectURL := params.URL()
	if objectURL == "" {
		return nil, errors.WithStack(ErrMissingURL)
	}

	if c.closed.Load() {
		return nil, errors.WithStack(ErrClientClosed)
	}

	start := time.Now()
	result, err := c.dispatch(ctx, method, params, objectURL)

	code := -1
	if result != nil {
		code = result.Status.Code
	}
	c.metrics.RecordDispatch(string(method), normalizeURL(objectURL), code, time.Since(start))

	if err != nil {
		c.metrics.RecordError("dispatch", errorType(err))
		return nil, err
	}

	return result, nil
}

func (c *Client) dispatch(ctx context.Context, method Method, params Params, objectURL string) (*Result, error) {
	sessionID, err := c.session.acquire(ctx)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method: method,
		Params: []Params{params},
	}
	c.credential.decorate(req, sessionID)

	resp, err := c.transport.send(ctx, req, c.timeoutFor(objectURL, params))
	if err != nil {
		return nil, err
	}

	return &resp.Result[0], nil
}

// timeoutFor gives proxy calls the device wait on top of the request timeout.
func (c *Client) timeoutFor(objectURL string, params Params) time.Duration {
	if objectURL != URLProxy {
		return c.cfg.RequestTimeout
	}

	return max(c.cfg.ProxyTimeout, proxyWait(params)) + c.cfg.RequestTimeout
}

// Logout ends the current session. The client stays usable and logs in again
// on the next Dispatch. Without a session it does nothing.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.logout(ctx)
}

// Session returns the current session state. Token clients always report
// StateUnauthenticated since they keep no session.
func (c *Client) Session() Session {
	return c.session.snapshot()
}

// Close logs out on a best-effort basis and releases idle connections.
// It is idempotent and never returns an error; logout failures are logged.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
		defer cancel()

		if err := c.session.close(ctx); err != nil {
			c.logger.Warn("logout on close failed",
				observability.Field{Key: "error", Value: err},
			)
		}

		c.httpClient.CloseIdleConnections()
	})

	return nil
}

// WithClient creates a client, runs fn and closes the client on every exit path.
func WithClient(ctx context.Context, cfg *ClientConfig, fn func(context.Context, *Client) error) error {
	client, err := NewWithConfig(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

func errorType(err error) string {
	var (
		transportErr *TransportError
		protocolErr  *ProtocolError
		authErr      *AuthenticationError
	)

	switch {
	case errors.As(err, &authErr):
		return "AuthenticationError"
	case errors.As(err, &transportErr):
		return "TransportError"
	case errors.As(err, &protocolErr):
		return "ProtocolError"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "ContextError"
	default:
		return "Error"
	}
}
