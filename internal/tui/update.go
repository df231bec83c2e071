package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slipway-io/slipway/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case PluginStartMsg:
		m.ensurePlugin(msg.Name, msg.Stage)
		result := m.results[msg.Name]
		result.Status = model.StatusRunning
		m.results[msg.Name] = result
		return m, nil
	case PluginCompleteMsg:
		name := msg.Result.Plugin
		if name == "" {
			return m, nil
		}
		m.ensurePlugin(name, msg.Result.Stage)
		existing := m.results[name]
		previouslyCompleted := existing.Status == model.StatusSuccess ||
			existing.Status == model.StatusSkipped ||
			existing.Status == model.StatusFailed
		m.results[name] = msg.Result
		if !previouslyCompleted {
			m.completed++
			m.markFinishedIfComplete()
		}
		return m, nil
	case RunFinishedMsg:
		m.summary = msg.Summary
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
