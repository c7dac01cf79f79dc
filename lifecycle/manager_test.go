//go:build !windows

package lifecycle

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 20 * time.Millisecond

func newTestManager(t *testing.T, runMode, probeURL string) *Manager {
	b := newTestBuilder(t, "build")
	return NewManager(ManagerConfig{
		Builder:      b,
		Run:          helperCommand(runMode),
		ProbeURL:     probeURL,
		LiveAttempts: 5,
		LiveInterval: testInterval,
		StopGrace:    time.Second,
	})
}

// closedURL returns a URL on which nothing is listening.
func closedURL(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "http://" + addr + "/"
}

func TestManagerFullLifecycle(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		m := newTestManager(t, "sleep", server.URL+"/")
		assert.Equal(t, NotStarted, m.State())

		require.NoError(t, m.Build(context.Background()))
		assert.Equal(t, Built, m.State())

		require.NoError(t, m.Start())
		assert.Equal(t, Starting, m.State())
		assert.NotZero(t, m.Handle().ID)

		require.NoError(t, m.AwaitLive(context.Background()))
		assert.Equal(t, Live, m.State())

		m.Stop()
		assert.Equal(t, Stopped, m.State())

		m.Stop()
		assert.Equal(t, Stopped, m.State())

		m.CleanupArtifacts(context.Background())
		assert.NoFileExists(t, m.config.Builder.Artifact)
	})
}

func TestManagerBecomesLiveAfterRetries(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.SequentialHandler(
		httphelpers.HandlerWithStatus(503),
		httphelpers.HandlerWithStatus(503),
		httphelpers.HandlerWithStatus(200),
	))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		m := newTestManager(t, "sleep", server.URL+"/")
		require.NoError(t, m.Build(context.Background()))
		require.NoError(t, m.Start())
		defer m.Stop()

		start := time.Now()
		require.NoError(t, m.AwaitLive(context.Background()))

		assert.Len(t, requests, 3)
		assert.GreaterOrEqual(t, time.Since(start), 2*testInterval-5*time.Millisecond)
		for i := 0; i < 3; i++ {
			r := <-requests
			assert.Equal(t, http.MethodGet, r.Request.Method)
		}
	})
}

func TestManagerUnreachable(t *testing.T) {
	m := newTestManager(t, "sleep", closedURL(t))
	require.NoError(t, m.Build(context.Background()))
	require.NoError(t, m.Start())

	err := m.AwaitLive(context.Background())

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, Unreachable, m.State())

	m.Stop()
	assert.Equal(t, Stopped, m.State())
}

func TestManagerProcessExitsBeforeLive(t *testing.T) {
	m := newTestManager(t, "crash", closedURL(t))
	m.config.LiveAttempts = 50
	require.NoError(t, m.Build(context.Background()))
	require.NoError(t, m.Start())

	start := time.Now()
	err := m.AwaitLive(context.Background())

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Less(t, time.Since(start), 50*testInterval)
	m.Stop()
	assert.Equal(t, Stopped, m.State())
}

func TestManagerAwaitLiveCancelled(t *testing.T) {
	m := newTestManager(t, "sleep", closedURL(t))
	m.config.LiveAttempts = 100
	require.NoError(t, m.Build(context.Background()))
	require.NoError(t, m.Start())
	defer m.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 3*testInterval)
	defer cancel()
	err := m.AwaitLive(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Starting, m.State())
}

func TestManagerKillsProcessIgnoringTerm(t *testing.T) {
	m := newTestManager(t, "ignore-term", closedURL(t))
	m.config.StopGrace = 100 * time.Millisecond
	require.NoError(t, m.Build(context.Background()))
	require.NoError(t, m.Start())
	// give the helper time to install its signal handler
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	m.Stop()

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, Stopped, m.State())
}

func TestManagerLaunchFailure(t *testing.T) {
	m := newTestManager(t, "sleep", closedURL(t))
	m.config.Run = Command{"/nonexistent/server-binary"}
	require.NoError(t, m.Build(context.Background()))

	err := m.Start()

	assert.ErrorIs(t, err, ErrLaunchFailed)
	assert.Equal(t, Failed, m.State())
	assert.Zero(t, m.Handle().ID)
	m.Stop()
	assert.Equal(t, Failed, m.State())
}

func TestManagerBuildFailure(t *testing.T) {
	m := newTestManager(t, "sleep", closedURL(t))
	m.config.Builder.Command = helperCommand("build-fail")

	err := m.Build(context.Background())

	assert.ErrorIs(t, err, ErrBuildFailed)
	assert.Equal(t, Failed, m.State())
	assert.Error(t, m.Start())
}

func TestManagerRejectsOutOfOrderCalls(t *testing.T) {
	m := newTestManager(t, "sleep", closedURL(t))
	assert.Error(t, m.Start())
	assert.Equal(t, NotStarted, m.State())
}

func TestManagerDefaults(t *testing.T) {
	m := NewManager(ManagerConfig{Builder: &Builder{}})
	assert.Equal(t, DefaultLiveAttempts, m.config.LiveAttempts)
	assert.Equal(t, DefaultLiveInterval, m.config.LiveInterval)
	assert.Equal(t, DefaultStopGrace, m.config.StopGrace)
}
