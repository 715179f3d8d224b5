package response

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Result []resultItem `json:"result"`
}

type resultItem struct {
	URL string `json:"url"`
}

func (e *envelope) Validate() error {
	if len(e.Result) == 0 {
		return errors.New("missing result")
	}
	return nil
}

type plain struct {
	Name string `json:"name"`
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func newResponse(status int, body string) (*http.Response, *trackingBody) {
	tb := &trackingBody{Reader: strings.NewReader(body)}
	return &http.Response{StatusCode: status, Body: tb}, tb
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		resp, body := newResponse(http.StatusOK, `{"result":[{"url":"/sys/status"}]}`)
		out, err := Decode[envelope](resp, http.StatusOK)

		require.NoError(t, err)
		require.Len(t, out.Result, 1)
		assert.Equal(t, "/sys/status", out.Result[0].URL)
		assert.True(t, body.closed, "body should be closed")
	})

	t.Run("unexpected status", func(t *testing.T) {
		t.Parallel()

		resp, body := newResponse(http.StatusServiceUnavailable, "busy")
		out, err := Decode[envelope](resp, http.StatusOK)

		require.Error(t, err)
		assert.Nil(t, out)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		assert.Contains(t, err.Error(), "status=503")
		assert.True(t, body.closed, "body should be closed")
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		resp, _ := newResponse(http.StatusOK, "<html>not json</html>")
		_, err := Decode[envelope](resp, http.StatusOK)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Contains(t, err.Error(), "protocol error")
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Parallel()

		resp, _ := newResponse(http.StatusOK, `{"result":[]}`)
		_, err := Decode[envelope](resp, http.StatusOK)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Contains(t, err.Error(), "missing result")
	})

	t.Run("type without validator", func(t *testing.T) {
		t.Parallel()

		resp, _ := newResponse(http.StatusOK, `{"name":"fmg"}`)
		out, err := Decode[plain](resp, http.StatusOK)

		require.NoError(t, err)
		assert.Equal(t, "fmg", out.Name)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[plain](nil, http.StatusOK)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Zero(t, statusErr.StatusCode)
	})
}

func TestStatusErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *StatusError
		want string
	}{
		{name: "status only", err: &StatusError{StatusCode: 404}, want: "transport error: status=404"},
		{name: "cause only", err: &StatusError{Err: errors.New("dial tcp: refused")}, want: "transport error: dial tcp: refused"},
		{name: "status and cause", err: &StatusError{StatusCode: 503, Err: errors.New("after 5 attempts")}, want: "transport error: status=503: after 5 attempts"},
		{name: "empty", err: &StatusError{}, want: "transport error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")

	assert.ErrorIs(t, &StatusError{Err: cause}, cause)
	assert.ErrorIs(t, &DecodeError{Err: cause}, cause)
}
