// Package testrun executes the configured test command and publishes the
// parsed metrics into the shared release context.
package testrun

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/plugins/internalexec"
	"github.com/slipway-io/slipway/internal/release"
	"github.com/slipway-io/slipway/pkg/errors"
)

// coveragePattern matches the statement-coverage line test runners print.
// The last occurrence in the output wins.
var coveragePattern = regexp.MustCompile(`coverage:\s+(\d+(?:\.\d+)?)%`)

const outputTailLines = 20

// Config holds the plugin settings.
type Config struct {
	Command string `yaml:"command"`
	Workdir string `yaml:"workdir"`
	Shell   string `yaml:"shell"`
}

// TestPlugin runs the test suite for the release.
type TestPlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &TestPlugin{}
}

// Run executes the configured command through a shell and records a test
// report on the shared context, including when the command fails.
func (p *TestPlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	var cfg Config
	if err := inv.Settings.Decode(&cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Command) == "" {
		return errors.NewValidationError("command", "test plugin requires a command", nil)
	}

	shell := cfg.Shell
	if shell == "" {
		shell = "sh"
	}
	workdir := cfg.Workdir
	if workdir == "" {
		workdir = inv.Release.WorkDir
	}

	inv.Log.WithFields(map[string]any{"command": cfg.Command}).Info("running tests")

	started := time.Now()
	cmd := exec.CommandContext(ctx, shell, "-c", cfg.Command)
	cmd.Dir = workdir
	res, err := internalexec.RunCombined(cmd)
	elapsed := time.Since(started)

	coverage := parseCoverage(res.Output)
	inv.Release.Tests = &release.TestReport{
		Passed:   err == nil,
		Coverage: coverage,
		Duration: elapsed,
	}

	if err != nil {
		return fmt.Errorf("test command failed: %w\n%s", err, res.Tail(outputTailLines))
	}

	inv.Log.WithFields(map[string]any{
		"coverage": coverage,
		"duration": elapsed.Round(time.Millisecond).String(),
	}).Info("tests passed")
	return nil
}

func parseCoverage(output string) float64 {
	matches := coveragePattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil {
		return 0
	}
	return value
}
