package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Handler(t *testing.T) {
	collector := NewCollector()
	m := NewStoreMetrics(collector, "test.db")
	m.ObserveOp("set", 0.001, nil)

	srv := NewServer(":0", "", collector.GetRegistry(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_Unhealthy(t *testing.T) {
	srv := NewServer(":0", "/metrics", NewCollector().GetRegistry(), func(context.Context) error {
		return errors.New("store closed")
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", "/metrics", NewCollector().GetRegistry(), nil)
	ctx := context.Background()

	require.NoError(t, srv.Start(ctx))
	assert.True(t, srv.Ready())

	require.NoError(t, srv.Stop(ctx))
	assert.False(t, srv.Ready())
}
