package app

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/nsbridge/internal/bridge"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
)

func newTestHost(t *testing.T, modules fstest.MapFS) *Host {
	t.Helper()
	h, err := New(testConfig(), modules,
		WithLogger(logging.NewNop()),
		WithRegistry(bridge.NewRegistry()),
	)
	require.NoError(t, err)
	return h
}

func TestHostStart(t *testing.T) {
	h := newTestHost(t, testModules())

	launcher, err := h.Start()
	require.NoError(t, err)
	assert.Equal(t, "main.main-activity", launcher.Namespace)
	assert.Equal(t, "resumed 0", launcher.Instance().Content())

	inst, ok := h.Bridge().Lookup("main.main-activity")
	require.True(t, ok)
	assert.Same(t, launcher.Instance(), inst)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	caps, err := h.Bootstrap().Capabilities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "remote", caps.Mode())
	assert.True(t, caps.RemoteStarted)

	addr := h.REPL().Addr()
	require.NotEmpty(t, addr)
	assert.Equal(t, addr, h.Bootstrap().RemoteServer())

	resp, err := http.Get("http://" + addr + "/instances/main.main-activity")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	detail, err := h.Launch("main.Detail")
	require.NoError(t, err)
	assert.Equal(t, "main.detail-view", detail.Namespace)

	_, err = h.Launch("main.Unknown")
	assert.ErrorIs(t, err, ErrUnknownComponent)

	require.NoError(t, h.Close(ctx))
	assert.True(t, launcher.Instance().IsDestroyed())
	assert.Empty(t, h.REPL().Addr())
}

func TestHostWithoutRemoteServer(t *testing.T) {
	modules := testModules()
	delete(modules, "repl/server.js")
	h := newTestHost(t, modules)

	_, err := h.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	caps, err := h.Bootstrap().Capabilities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dynamic", caps.Mode())
	assert.Empty(t, h.REPL().Addr())

	require.NoError(t, h.Close(ctx))
}

func TestHostRequiresManifest(t *testing.T) {
	modules := testModules()
	delete(modules, "manifest.yaml")

	_, err := New(testConfig(), modules, WithLogger(logging.NewNop()))
	assert.ErrorContains(t, err, "read manifest")
}
