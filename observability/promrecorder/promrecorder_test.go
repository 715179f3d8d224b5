package promrecorder

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-fortimanager/observability"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil registerer", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil, "")
		require.Error(t, err)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		_, err := New(reg, "")
		require.NoError(t, err)

		_, err = New(reg, "")
		require.Error(t, err)
	})
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec, err := New(reg, "test")
	require.NoError(t, err)

	rec.RecordHTTPRequest("POST", "/jsonrpc", 200, 10*time.Millisecond)
	rec.RecordHTTPRequest("POST", "/jsonrpc", 200, 20*time.Millisecond)
	rec.RecordDispatch("get", "/dvmdb/adom/:adom/device/:name", 0, time.Millisecond)
	rec.RecordRetry(1, "/jsonrpc")
	rec.RecordRateLimit("/jsonrpc", time.Millisecond)
	rec.RecordSessionEvent(observability.SessionEventLogin)
	rec.RecordSessionEvent(observability.SessionEventLogin)
	rec.RecordSessionEvent(observability.SessionEventProbeFailed)
	rec.RecordError("dispatch", "TransportError")

	assert.InDelta(t, 2, testutil.ToFloat64(rec.httpRequests.WithLabelValues("POST", "/jsonrpc", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.dispatches.WithLabelValues("get", "/dvmdb/adom/:adom/device/:name", "0")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.retries.WithLabelValues("/jsonrpc")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(rec.sessionEvents.WithLabelValues("login")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.sessionEvents.WithLabelValues("probe_failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.errors.WithLabelValues("dispatch", "TransportError")), 0)

	count, err := testutil.GatherAndCount(reg, "test_session_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
