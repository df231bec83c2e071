package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryEmptyWhenNothingTracked(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewSummary(SummaryData{}).View())
}

func TestSummaryInProgress(t *testing.T) {
	t.Parallel()

	out := NewSummary(SummaryData{Total: 4, Completed: 1}).View()

	assert.Contains(t, out, "Plugins: 1/4 completed")
	assert.NotContains(t, out, "Run finished")
}

func TestSummarySuccessfulRun(t *testing.T) {
	t.Parallel()

	out := NewSummary(SummaryData{
		Total:           2,
		Completed:       2,
		Finished:        true,
		ReleaseBranch:   true,
		ReleaseExecuted: true,
		Tag:             "v1.0.0",
		ArtifactsDir:    "artifacts",
	}).View()

	assert.Contains(t, out, "Run finished successfully")
	assert.Contains(t, out, "Release stage executed for v1.0.0")
	assert.Contains(t, out, "Artifacts: artifacts")
}

func TestSummaryRunWithFailures(t *testing.T) {
	t.Parallel()

	out := NewSummary(SummaryData{Total: 3, Completed: 3, Failed: 1, Finished: true}).View()

	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "Run finished with errors")
	assert.Contains(t, out, "No release plugins executed")
}

func TestSummaryCancelledRun(t *testing.T) {
	t.Parallel()

	out := NewSummary(SummaryData{Total: 3, Completed: 1, Cancelled: true}).View()

	assert.Contains(t, out, "Run cancelled")
	assert.NotContains(t, out, "Artifacts:")
}

func TestSummaryNonReleaseBranchHint(t *testing.T) {
	t.Parallel()

	out := NewSummary(SummaryData{
		Total:           1,
		Completed:       1,
		Finished:        true,
		ReleaseBranches: []string{"release"},
	}).View()

	assert.Contains(t, out, `Release plugins run on branch "release"`)
}
