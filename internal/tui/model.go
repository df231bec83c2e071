package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/model"
)

// PluginStartMsg indicates a plugin invocation has started.
type PluginStartMsg struct {
	Name  string
	Stage config.Stage
	Time  time.Time
}

// PluginCompleteMsg reports that a plugin invocation has finished.
type PluginCompleteMsg struct {
	Result model.PluginResult
}

// RunFinishedMsg carries the final run summary once the engine returns.
type RunFinishedMsg struct {
	Summary *model.RunSummary
}

type tickMsg struct{}

// Model contains the Bubbletea state for the release run display.
type Model struct {
	cfg            *config.Config
	results        map[string]model.PluginResult
	order          []string
	spinner        spinner.Model
	summary        *model.RunSummary
	total          int
	completed      int
	finished       bool
	cancelled      bool
	nonInteractive bool
}

// NewModel constructs a TUI model seeded with the configured entries in
// declared order.
func NewModel(cfg *config.Config, entries []config.PluginEntry, nonInteractive bool) Model {
	m := Model{
		cfg:            cfg,
		results:        make(map[string]model.PluginResult),
		order:          make([]string, 0),
		spinner:        spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		nonInteractive: nonInteractive,
	}

	for _, entry := range entries {
		m.ensurePlugin(entry.Name, entry.Stage)
	}

	return m
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} }),
	)
}

// TotalPlugins returns the number of entries tracked by the model.
func (m Model) TotalPlugins() int {
	return m.total
}

// CompletedPlugins returns the number of finished invocations.
func (m Model) CompletedPlugins() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// Summary returns the final run summary, nil until the run finishes.
func (m Model) Summary() *model.RunSummary {
	return m.summary
}

func (m *Model) ensurePlugin(name string, stage config.Stage) {
	if name == "" {
		return
	}
	if _, exists := m.results[name]; !exists {
		m.results[name] = model.PluginResult{Plugin: name, Stage: stage, Status: model.StatusPending}
		m.order = append(m.order, name)
		m.total++
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
