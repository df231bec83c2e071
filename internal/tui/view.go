package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/slipway-io/slipway/internal/model"
	"github.com/slipway-io/slipway/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("slipway • %s", m.title()))
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewPipeline(m.order, m.results).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Pipeline"))
		sections = append(sections, m.renderPipeline(entries))
	}

	summary := components.NewSummary(m.summaryData()).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderPipeline(entries []components.PluginView) string {
	var lines []string
	for _, entry := range entries {
		res := entry.Result
		line := fmt.Sprintf(" %s %s %s", m.statusIcon(res.Status), entry.Name, stageStyle.Render("["+string(res.Stage)+"]"))
		if strings.TrimSpace(res.Message) != "" {
			line = fmt.Sprintf("%s %s", line, res.Message)
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) summaryData() components.SummaryData {
	data := components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
	}
	if m.summary != nil {
		data.Failed = m.summary.CountByStatus(model.StatusFailed)
		data.ReleaseBranch = m.summary.ReleaseBranch
		data.ReleaseExecuted = m.summary.ReleaseExecuted
		data.ReleaseBranches = m.summary.ReleaseBranches
		data.Tag = m.summary.Tag
		data.ArtifactsDir = m.summary.ArtifactsDir
	}
	return data
}

func (m Model) title() string {
	if m.cfg != nil && strings.TrimSpace(m.cfg.Project) != "" {
		return m.cfg.Project
	}
	return "release"
}

func (m Model) statusIcon(status model.PluginStatus) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render(m.spinner.View())
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusSkipped:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
