// Package clean removes stale build outputs matched by configured glob
// patterns, optionally keeping the newest entries.
package clean

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/pkg/errors"
)

// Config holds the plugin settings. Patterns resolve against the working
// directory. Keep retains the newest N matches per pattern.
type Config struct {
	Paths []string `yaml:"paths"`
	Keep  int      `yaml:"keep"`
}

// CleanPlugin deletes matched paths under the working directory.
type CleanPlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &CleanPlugin{}
}

func (p *CleanPlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	var cfg Config
	if err := inv.Settings.Decode(&cfg); err != nil {
		return err
	}
	if len(cfg.Paths) == 0 {
		return errors.NewValidationError("paths", "clean plugin requires at least one path pattern", nil)
	}

	workDir := inv.Release.WorkDir
	removed := 0

	for _, pattern := range cfg.Paths {
		resolved := pattern
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(workDir, resolved)
		}

		matches, err := filepath.Glob(resolved)
		if err != nil {
			return errors.NewValidationError("paths", fmt.Sprintf("invalid pattern %q", pattern), err)
		}

		for _, match := range matches {
			if err := ensureInside(workDir, match); err != nil {
				return err
			}
		}

		matches, err = newestFirst(matches)
		if err != nil {
			return err
		}
		if cfg.Keep > 0 && len(matches) > cfg.Keep {
			matches = matches[cfg.Keep:]
		} else if cfg.Keep > 0 {
			matches = nil
		}

		for _, match := range matches {
			if err := os.RemoveAll(match); err != nil {
				return fmt.Errorf("remove %s: %w", match, err)
			}
			inv.Log.Debug(fmt.Sprintf("removed %s", match))
			removed++
		}
	}

	inv.Log.WithFields(map[string]any{"removed": removed}).Info("clean finished")
	return nil
}

// ensureInside refuses any match that escapes the working directory. The
// plugin deletes recursively, so a stray pattern must never reach out of
// the tree it was configured for.
func ensureInside(workDir, path string) error {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.NewValidationError("paths",
			fmt.Sprintf("refusing to remove %q: outside the working directory", path), nil)
	}
	return nil
}

func newestFirst(matches []string) ([]string, error) {
	type stamped struct {
		path    string
		modTime int64
	}
	stampedMatches := make([]stamped, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", match, err)
		}
		stampedMatches = append(stampedMatches, stamped{path: match, modTime: info.ModTime().UnixNano()})
	}
	sort.SliceStable(stampedMatches, func(i, j int) bool {
		return stampedMatches[i].modTime > stampedMatches[j].modTime
	})

	out := make([]string, len(stampedMatches))
	for i, s := range stampedMatches {
		out[i] = s.path
	}
	return out, nil
}
