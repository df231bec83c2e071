package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/slipway-io/slipway/internal/config"
)

func (f *rootFlags) runOptions() runOptions {
	return runOptions{
		ConfigPath:     f.configPath,
		Verbose:        f.verbose,
		NonInteractive: f.plain || !term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// resolveConfigPath falls back to the default settings file in the working
// directory and rejects paths that do not name a readable file.
func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultFileName
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve settings path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("settings file does not exist: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("settings path %s is a directory", abs)
	}

	return abs, nil
}
