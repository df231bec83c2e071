// Package model defines the shared result vocabulary passed between the
// engine, the plugin invoker, and the presentation layers.
package model

import (
	"time"

	"github.com/slipway-io/slipway/internal/config"
)

// PluginStatus describes the outcome of a single plugin invocation.
type PluginStatus string

const (
	StatusPending PluginStatus = "pending"
	StatusRunning PluginStatus = "running"
	StatusSuccess PluginStatus = "success"
	StatusSkipped PluginStatus = "skipped"
	StatusFailed  PluginStatus = "failed"
)

// PluginResult captures the outcome of one plugin invocation.
type PluginResult struct {
	Plugin    string
	Stage     config.Stage
	Status    PluginStatus
	Message   string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

// Failed reports whether the invocation ended in failure.
func (r PluginResult) Failed() bool {
	return r.Status == StatusFailed
}

// RunSummary aggregates a full engine run for reporting.
type RunSummary struct {
	RunID           string
	Project         string
	Branch          string
	Version         string
	Tag             string
	ReleaseBranch   bool
	ReleaseBranches []string
	ArtifactsDir    string
	ReleaseExecuted bool
	Results         []PluginResult
	Duration        time.Duration
	Err             error
}

// CountByStatus returns how many results carry the given status.
func (s *RunSummary) CountByStatus(status PluginStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the results that ended in failure, in run order.
func (s *RunSummary) Failures() []PluginResult {
	var failed []PluginResult
	for _, r := range s.Results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Ok reports whether the run finished without any failure.
func (s *RunSummary) Ok() bool {
	return s.Err == nil && len(s.Failures()) == 0
}
