package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates run facts for summary rendering.
type SummaryData struct {
	Total           int
	Completed       int
	Failed          int
	Finished        bool
	Cancelled       bool
	ReleaseBranch   bool
	ReleaseExecuted bool
	ReleaseBranches []string
	Tag             string
	ArtifactsDir    string
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Plugins: %d/%d completed", s.data.Completed, s.data.Total))
	}
	if s.data.Failed > 0 {
		lines = append(lines, fmt.Sprintf("Failed: %d", s.data.Failed))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Run cancelled")
	case s.data.Finished && s.data.Total > 0:
		if s.data.Failed == 0 && s.data.Completed == s.data.Total {
			lines = append(lines, "Run finished successfully")
		} else {
			lines = append(lines, "Run finished with errors")
		}
	}

	if s.data.Finished && !s.data.Cancelled {
		switch {
		case s.data.ReleaseExecuted:
			lines = append(lines, fmt.Sprintf("Release stage executed for %s", s.data.Tag))
		case !s.data.ReleaseBranch && len(s.data.ReleaseBranches) > 0:
			lines = append(lines, fmt.Sprintf("Release plugins run on branch %q", s.data.ReleaseBranches[0]))
		case s.data.Total > 0:
			lines = append(lines, "No release plugins executed")
		}
		if s.data.ArtifactsDir != "" {
			lines = append(lines, fmt.Sprintf("Artifacts: %s", s.data.ArtifactsDir))
		}
	}

	return strings.Join(lines, "\n")
}
