package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipway-io/slipway/internal/model"
)

func TestPipelinePreservesDeclaredOrder(t *testing.T) {
	t.Parallel()

	results := map[string]model.PluginResult{
		"pack": {Plugin: "pack", Status: model.StatusSuccess},
		"test": {Plugin: "test", Status: model.StatusRunning},
	}
	entries := NewPipeline([]string{"test", "pack"}, results).Entries()

	require.Len(t, entries, 2)
	assert.Equal(t, "test", entries[0].Name)
	assert.Equal(t, model.StatusRunning, entries[0].Result.Status)
	assert.Equal(t, "pack", entries[1].Name)
	assert.Equal(t, model.StatusSuccess, entries[1].Result.Status)
}

func TestPipelineZeroValueForUntrackedName(t *testing.T) {
	t.Parallel()

	entries := NewPipeline([]string{"badge"}, nil).Entries()

	require.Len(t, entries, 1)
	assert.Equal(t, "badge", entries[0].Name)
	assert.Empty(t, entries[0].Result.Status)
}

func TestPipelineEmptyOrder(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewPipeline(nil, nil).Entries())
}
