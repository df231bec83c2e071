package components

import "github.com/slipway-io/slipway/internal/model"

// PluginView pairs an entry name with its current result for rendering.
type PluginView struct {
	Name   string
	Result model.PluginResult
}

// Pipeline projects the tracked results into declared order for display.
type Pipeline struct {
	order   []string
	results map[string]model.PluginResult
}

// NewPipeline creates a pipeline component over the tracked results.
func NewPipeline(order []string, results map[string]model.PluginResult) Pipeline {
	return Pipeline{order: order, results: results}
}

// Entries returns the plugin views in declared order.
func (p Pipeline) Entries() []PluginView {
	entries := make([]PluginView, 0, len(p.order))
	for _, name := range p.order {
		entries = append(entries, PluginView{Name: name, Result: p.results[name]})
	}
	return entries
}
