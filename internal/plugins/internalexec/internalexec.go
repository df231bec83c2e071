// Package internalexec runs plugin-configured commands, keeping their
// output available for failure reports.
package internalexec

import (
	"os/exec"
	"strings"
)

// Result holds everything a command wrote, interleaved in write order.
type Result struct {
	Output string
}

// RunCombined executes the command and captures stdout and stderr together.
// The captured output is valid even when the command fails.
func RunCombined(cmd *exec.Cmd) (Result, error) {
	out, err := cmd.CombinedOutput()
	return Result{Output: string(out)}, err
}

// Tail returns the last n lines of the output.
func (r Result) Tail(n int) string {
	lines := strings.Split(strings.TrimRight(r.Output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
