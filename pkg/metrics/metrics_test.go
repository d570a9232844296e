package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestRecordRun(t *testing.T) {
	Register()
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("success"))
	RecordRun("success", time.Unix(1700000000, 0))

	assert.Equal(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(LastRunTimestamp.WithLabelValues("success")))
}

func TestPusher_NilWhenUnconfigured(t *testing.T) {
	p := NewPusher("", "job", nil)
	assert.Nil(t, p)
	assert.NoError(t, p.Push(context.Background()))
}

func TestPusher_Push(t *testing.T) {
	Register()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Contains(t, r.URL.Path, "/metrics/job/loginetl")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPusher(srv.URL, "loginetl", map[string]string{"queue": "login-queue"})
	require.NotNil(t, p)
	require.NoError(t, p.Push(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
