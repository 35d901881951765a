package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/psantana5/workgate/pkg/api"
	"github.com/psantana5/workgate/pkg/logging"
	"github.com/psantana5/workgate/pkg/models"
	"github.com/psantana5/workgate/pkg/retry"
	"github.com/psantana5/workgate/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logging.NewLogger(logging.ERROR, false)
	logger.SetOutput(io.Discard)

	h := api.NewHandler(store.NewMemoryStore(), logger)
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCheck(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, "")
	ctx := context.Background()

	tm := 2000
	resp, err := c.Check(ctx, &tm, "")
	require.NoError(t, err)
	assert.True(t, resp.Allowed)
	assert.Equal(t, "I am at work", resp.Message)
	assert.Equal(t, models.DefaultWindowName, resp.Window)

	tm = 2100
	resp, err = c.Check(ctx, &tm, "")
	require.NoError(t, err)
	assert.False(t, resp.Allowed)
	assert.Equal(t, "I'm unavailable!", resp.Message)
}

func TestClientWindowLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, "")
	ctx := context.Background()

	w := &models.Window{Name: "night-shift", Open: 2200, Close: 2359}
	require.NoError(t, c.SaveWindow(ctx, w))

	windows, err := c.ListWindows(ctx)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "night-shift", windows[0].Name)

	tm := 2300
	resp, err := c.Check(ctx, &tm, "night-shift")
	require.NoError(t, err)
	assert.True(t, resp.Allowed)

	require.NoError(t, c.DeleteWindow(ctx, "night-shift"))

	_, err = c.Check(ctx, &tm, "night-shift")
	assert.Error(t, err)
}

func TestClientListDecisions(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, "")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tm := 1200 + i
		_, err := c.Check(ctx, &tm, "")
		require.NoError(t, err)
	}

	decisions, err := c.ListDecisions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
	assert.Equal(t, 1202, decisions[0].Time)
}

func TestClientServerError(t *testing.T) {
	c := New("http://127.0.0.1:1", "") // nothing listens here
	c.SetRetryConfig(retry.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1})
	ctx := context.Background()

	tm := 2000
	_, err := c.Check(ctx, &tm, "")
	assert.Error(t, err)
}
