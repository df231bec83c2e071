package badge

import (
	"context"
	"io"
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

func TestRunRendersBadge(t *testing.T) {
	t.Parallel()

	rctx := &release.Context{
		ArtifactsDir: t.TempDir(),
		Tests:        &release.TestReport{Passed: true, Coverage: 92.5},
	}

	inv := newInvocation(t, plugin.Settings{}, rctx)
	require.NoError(t, New().Run(context.Background(), inv))

	path := filepath.Join(rctx.ArtifactsDir, "coverage.svg")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	svg := string(raw)
	assert.Contains(t, svg, "coverage")
	assert.Contains(t, svg, "92.5%")
	assert.Contains(t, svg, "#4c1")
	assert.Equal(t, []string{path}, rctx.ArchiveInputs)
}

func TestRunCustomLabelAndFilename(t *testing.T) {
	t.Parallel()

	rctx := &release.Context{
		ArtifactsDir: t.TempDir(),
		Tests:        &release.TestReport{Passed: true, Coverage: 55},
	}

	inv := newInvocation(t, plugin.Settings{
		"label":    "statements",
		"filename": "stmt.svg",
	}, rctx)
	require.NoError(t, New().Run(context.Background(), inv))

	raw, err := os.ReadFile(filepath.Join(rctx.ArtifactsDir, "stmt.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "statements")
	assert.Contains(t, string(raw), "55.0%")
}

func TestRunColorsByThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		coverage float64
		want     string
	}{
		{"high", 95, "#4c1"},
		{"good", 80, "#dfb317"},
		{"middling", 60, "#fe7d37"},
		{"low", 20, "#e05d44"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rctx := &release.Context{
				ArtifactsDir: t.TempDir(),
				Tests:        &release.TestReport{Coverage: tt.coverage},
			}
			inv := newInvocation(t, plugin.Settings{}, rctx)
			require.NoError(t, New().Run(context.Background(), inv))

			raw, err := os.ReadFile(filepath.Join(rctx.ArtifactsDir, "coverage.svg"))
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.want)
		})
	}
}

func TestRunToleratesMissingMetrics(t *testing.T) {
	t.Parallel()

	rctx := &release.Context{ArtifactsDir: t.TempDir()}
	inv := newInvocation(t, plugin.Settings{}, rctx)

	require.NoError(t, New().Run(context.Background(), inv))

	entries, err := os.ReadDir(rctx.ArtifactsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, rctx.ArchiveInputs)
}
