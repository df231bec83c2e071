package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/release"
)

func newInvocation(t *testing.T, settings plugin.Settings, rctx *release.Context) *plugin.Invocation {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "debug", Writer: io.Discard})
	require.NoError(t, err)
	return &plugin.Invocation{Settings: settings, Release: rctx, Log: log}
}

func contextWithPackage(t *testing.T) *release.Context {
	t.Helper()
	dir := t.TempDir()
	pkg := filepath.Join(dir, "demo-v1.2.3.tar.gz")
	require.NoError(t, os.WriteFile(pkg, []byte("package bytes"), 0o644))
	return &release.Context{
		Project:      "demo",
		Version:      "1.2.3",
		ArtifactsDir: dir,
		PackageFile:  pkg,
	}
}

type capturedRequest struct {
	method string
	apiKey string
	body   []byte
}

func feedServer(t *testing.T, status int, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured.method = r.Method
		captured.apiKey = r.Header.Get("X-Api-Key")
		captured.body = body
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunUploadsPackage(t *testing.T) {
	t.Parallel()

	var captured capturedRequest
	server := feedServer(t, http.StatusCreated, &captured)
	rctx := contextWithPackage(t)

	inv := newInvocation(t, plugin.Settings{
		"feed":    server.URL,
		"api_key": "secret-key",
	}, rctx)
	require.NoError(t, New().Run(context.Background(), inv))

	assert.Equal(t, http.MethodPut, captured.method)
	assert.Equal(t, "secret-key", captured.apiKey)
	assert.Equal(t, []byte("package bytes"), captured.body)
	assert.True(t, rctx.PublishCompleted)
}

func TestRunReadsKeyFromEnvironment(t *testing.T) {
	t.Setenv("DEMO_FEED_KEY", "env-key")

	var captured capturedRequest
	server := feedServer(t, http.StatusOK, &captured)
	rctx := contextWithPackage(t)

	inv := newInvocation(t, plugin.Settings{
		"feed":        server.URL,
		"api_key_env": "DEMO_FEED_KEY",
	}, rctx)
	require.NoError(t, New().Run(context.Background(), inv))

	assert.Equal(t, "env-key", captured.apiKey)
}

func TestRunRejectedUpload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid api key"))
	}))
	t.Cleanup(server.Close)

	rctx := contextWithPackage(t)
	inv := newInvocation(t, plugin.Settings{"feed": server.URL}, rctx)

	err := New().Run(context.Background(), inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid api key")
	assert.False(t, rctx.PublishCompleted)
}

func TestRunRequiresFeed(t *testing.T) {
	t.Parallel()

	inv := newInvocation(t, plugin.Settings{}, contextWithPackage(t))

	err := New().Run(context.Background(), inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a feed URL")
}

func TestRunRequiresPackageFile(t *testing.T) {
	t.Parallel()

	inv := newInvocation(t, plugin.Settings{"feed": "https://feed.example.com"}, &release.Context{})

	err := New().Run(context.Background(), inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no package file in context")
}
