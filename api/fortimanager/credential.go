package fortimanager

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-fortimanager/internal/httpclient"
	"github.com/lexfrei/go-fortimanager/internal/middleware"
)

// Credential selects how the client authenticates. It is chosen once at
// construction; the only implementations are SessionCredential and TokenCredential.
type Credential interface {
	// authenticate obtains a session id; stateless credentials return "".
	authenticate(ctx context.Context, t *transport, timeout time.Duration) (string, error)
	// invalidate ends the session id on the controller.
	invalidate(ctx context.Context, t *transport, timeout time.Duration, sessionID string) error
	// decorate attaches the credential to an outbound envelope.
	decorate(req *Request, sessionID string)
	// middleware returns transport-level decoration, or nil.
	middleware() httpclient.Middleware
	// stateful reports whether a session must be maintained.
	stateful() bool
	// validate checks the credential fields at construction.
	validate() error
}

// SessionCredential logs in with a username and password and keeps the
// returned session id in every request envelope.
type SessionCredential struct {
	Username string
	Password string
}

// TokenCredential sends a static API token as "Authorization: Bearer <token>".
// No session is kept and envelopes carry no session field.
type TokenCredential struct {
	Token string
}

var (
	_ Credential = SessionCredential{}
	_ Credential = TokenCredential{}
)

func (c SessionCredential) authenticate(ctx context.Context, t *transport, timeout time.Duration) (string, error) {
	req := &Request{
		Method: MethodExec,
		Params: []Params{{
			"url":  URLLogin,
			"data": map[string]any{"user": c.Username, "passwd": c.Password},
		}},
	}

	resp, err := t.send(ctx, req, timeout)
	if err != nil {
		return "", err
	}

	status := resp.Result[0].Status
	if status.Code != 0 {
		return "", &AuthenticationError{Code: status.Code, Message: status.Message}
	}
	if resp.Session == "" {
		return "", &ProtocolError{Err: errors.New("login succeeded without a session id")}
	}

	return resp.Session, nil
}

func (c SessionCredential) invalidate(ctx context.Context, t *transport, timeout time.Duration, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	req := &Request{
		Method:  MethodExec,
		Params:  []Params{{"url": URLLogout}},
		Session: sessionID,
	}

	resp, err := t.send(ctx, req, timeout)
	if err != nil {
		return err
	}

	return resp.Result[0].Err()
}

func (c SessionCredential) decorate(req *Request, sessionID string) {
	req.Session = sessionID
}

func (c SessionCredential) middleware() httpclient.Middleware { return nil }

func (c SessionCredential) stateful() bool { return true }

func (c SessionCredential) validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}

	return nil
}

func (c TokenCredential) authenticate(context.Context, *transport, time.Duration) (string, error) {
	return "", nil
}

func (c TokenCredential) invalidate(context.Context, *transport, time.Duration, string) error {
	return nil
}

func (c TokenCredential) decorate(*Request, string) {}

func (c TokenCredential) middleware() httpclient.Middleware {
	return middleware.BearerToken(c.Token)
}

func (c TokenCredential) stateful() bool { return false }

func (c TokenCredential) validate() error {
	if c.Token == "" {
		return errors.New("API token is required")
	}

	return nil
}
