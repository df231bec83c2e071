// Package release builds and carries the shared context that flows through
// every plugin invocation in a run.
package release

import (
	"slices"
	"time"
)

// TestReport holds the metrics a test-stage plugin publishes for later
// consumers such as badge or summary rendering.
type TestReport struct {
	Passed   bool
	Coverage float64
	Duration time.Duration
}

// Context is the shared record propagated across all plugin invocations in a
// run. The core fields are fixed when the builder creates it. The extension
// fields start empty and are filled in by plugins as the run progresses, so
// every consumer must check for presence before use. Execution is strictly
// sequential, so no locking is needed. Last writer wins.
type Context struct {
	// Fixed at creation.
	WorkDir            string
	ConfigDir          string
	Project            string
	Branch             string
	Version            string
	Tag                string
	ProjectFiles       []string
	ArtifactsDir       string
	ArchiveName        string
	IsReleaseBranch    bool
	IsNonReleaseBranch bool
	ReleaseBranches    []string

	// Extended by plugins during the run.
	Tests            *TestReport
	PackageFile      string
	SymbolsFile      string
	ArchiveInputs    []string
	ReleaseDir       string
	ArchiveFile      string
	ReleaseAssets    []string
	PublishCompleted bool
}

// AddArchiveInput records a path for the archive plugin to pick up. Adding
// the same path twice is a no-op.
func (c *Context) AddArchiveInput(path string) {
	if path == "" || slices.Contains(c.ArchiveInputs, path) {
		return
	}
	c.ArchiveInputs = append(c.ArchiveInputs, path)
}

// AddReleaseAsset records a finished artifact for publish-capable plugins.
// Adding the same path twice is a no-op.
func (c *Context) AddReleaseAsset(path string) {
	if path == "" || slices.Contains(c.ReleaseAssets, path) {
		return
	}
	c.ReleaseAssets = append(c.ReleaseAssets, path)
}
