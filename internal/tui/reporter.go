package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/model"
)

// Reporter forwards engine lifecycle events into a running Bubbletea
// program, bridging the synchronous run loop to the display.
type Reporter struct {
	program *tea.Program
}

// NewReporter creates a Reporter bound to the program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{program: program}
}

// PluginStarted signals that a plugin invocation began.
func (r *Reporter) PluginStarted(name string, stage config.Stage) {
	r.program.Send(PluginStartMsg{Name: name, Stage: stage, Time: time.Now()})
}

// PluginFinished delivers the invocation result.
func (r *Reporter) PluginFinished(result model.PluginResult) {
	r.program.Send(PluginCompleteMsg{Result: result})
}

// RunFinished delivers the final summary and ends the display.
func (r *Reporter) RunFinished(summary *model.RunSummary) {
	r.program.Send(RunFinishedMsg{Summary: summary})
}
