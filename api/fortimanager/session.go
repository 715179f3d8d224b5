package fortimanager

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-fortimanager/observability"
)

// SessionState is the lifecycle state of the controller session.
type SessionState int

// Session states.
const (
	StateUnauthenticated SessionState = iota
	StateActive
	StateInvalid
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateActive:
		return "active"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Session is a point-in-time view of the controller session.
// ID and EstablishedAt are zero unless State is StateActive.
type Session struct {
	ID            string
	EstablishedAt time.Time
	State         SessionState
}

// sessionManager owns the session id. mu is held exclusively for every state
// check and change; a request captures the id under mu and sends without it,
// so concurrent requests overlap while validation stays serialized.
type sessionManager struct {
	mu sync.RWMutex

	state         SessionState
	id            string
	establishedAt time.Time
	closed        bool

	credential         Credential
	transport          *transport
	timeout            time.Duration
	authAttempts       int
	logoutBeforeReauth bool
	logger             observability.Logger
	metrics            observability.MetricsRecorder
}

// acquire validates the session and returns the id to send with.
// Token credentials keep no session and get an empty id.
func (m *sessionManager) acquire(ctx context.Context) (string, error) {
	if !m.credential.stateful() {
		return "", nil
	}

	return m.ensureValid(ctx)
}

// ensureValid makes the session Active and returns its id: it logs in from
// Unauthenticated or Invalid, and probes an Active session, re-authenticating
// when the probe fails.
func (m *sessionManager) ensureValid(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", errors.WithStack(ErrClientClosed)
	}

	if m.state == StateActive {
		if m.probe(ctx) {
			return m.id, nil
		}
		m.markInvalid(ctx)
	}

	if err := m.login(ctx); err != nil {
		return "", err
	}

	return m.id, nil
}

// probe reports whether the current session is still accepted by the controller.
func (m *sessionManager) probe(ctx context.Context) bool {
	req := &Request{Method: MethodGet, Params: []Params{{"url": URLStatus}}}
	m.credential.decorate(req, m.id)

	resp, err := m.transport.send(ctx, req, m.timeout)
	if err != nil {
		m.logger.Warn("session probe failed",
			observability.Field{Key: "error", Value: err},
		)
		return false
	}

	if status := resp.Result[0].Status; status.Code != 0 {
		m.logger.Info("session no longer valid",
			observability.Field{Key: "code", Value: status.Code},
			observability.Field{Key: "message", Value: status.Message},
		)
		return false
	}

	return true
}

func (m *sessionManager) markInvalid(ctx context.Context) {
	m.state = StateInvalid
	m.metrics.RecordSessionEvent(observability.SessionEventProbeFailed)

	if m.logoutBeforeReauth {
		if err := m.credential.invalidate(ctx, m.transport, m.timeout, m.id); err != nil {
			m.logger.Debug("logout of stale session failed",
				observability.Field{Key: "error", Value: err},
			)
		}
	}

	m.id = ""
	m.establishedAt = time.Time{}
}

func (m *sessionManager) login(ctx context.Context) error {
	var lastErr error

	for attempt := 1; attempt <= m.authAttempts; attempt++ {
		id, err := m.credential.authenticate(ctx, m.transport, m.timeout)
		if err == nil {
			m.state = StateActive
			m.id = id
			m.establishedAt = time.Now()
			m.metrics.RecordSessionEvent(observability.SessionEventLogin)
			m.logger.Info("session established",
				observability.Field{Key: "attempt", Value: attempt},
			)
			return nil
		}

		lastErr = err
		m.logger.Warn("login failed",
			observability.Field{Key: "attempt", Value: attempt},
			observability.Field{Key: "max_attempts", Value: m.authAttempts},
			observability.Field{Key: "error", Value: err},
		)

		if ctx.Err() != nil {
			break
		}
	}

	m.state = StateUnauthenticated
	m.id = ""
	m.establishedAt = time.Time{}
	m.metrics.RecordSessionEvent(observability.SessionEventLoginFailed)

	var authErr *AuthenticationError
	if errors.As(lastErr, &authErr) {
		return authErr
	}

	return &AuthenticationError{Err: lastErr}
}

// logout ends the session. Local state is cleared even when the controller
// call fails; without a session it does nothing.
func (m *sessionManager) logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.endSession(ctx)
}

// close logs out and refuses any later login.
func (m *sessionManager) close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return m.endSession(ctx)
}

func (m *sessionManager) endSession(ctx context.Context) error {
	id := m.id
	m.state = StateUnauthenticated
	m.id = ""
	m.establishedAt = time.Time{}

	if id == "" {
		return nil
	}

	m.metrics.RecordSessionEvent(observability.SessionEventLogout)
	m.logger.Info("logging out")

	if err := m.credential.invalidate(ctx, m.transport, m.timeout, id); err != nil {
		return errors.Wrap(err, "logout failed")
	}

	return nil
}

func (m *sessionManager) snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Session{
		ID:            m.id,
		EstablishedAt: m.establishedAt,
		State:         m.state,
	}
}
