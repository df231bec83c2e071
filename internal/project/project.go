// Package project reads build metadata from project descriptor files. The
// engine treats the first configured descriptor as the canonical source of
// the release version.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	slipwayerrors "github.com/slipway-io/slipway/pkg/errors"
)

// ResolveFiles expands the configured project patterns relative to baseDir,
// preserving pattern order and removing duplicates. At least one file must
// match or the configuration is invalid.
func ResolveFiles(baseDir string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		expanded := pattern
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(baseDir, expanded)
		}

		matches, err := filepath.Glob(expanded)
		if err != nil {
			return nil, slipwayerrors.NewValidationError("projects", fmt.Sprintf("bad pattern %q: %v", pattern, err), err)
		}

		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, match)
		}
	}

	if len(files) == 0 {
		return nil, slipwayerrors.NewValidationError("projects", fmt.Sprintf("no project files matched %v", patterns), nil)
	}

	return files, nil
}

// ReadVersion reads the declared version property from a project descriptor.
// Supported formats, chosen by extension: .yaml/.yml and .json.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", slipwayerrors.NewValidationError("projects", fmt.Sprintf("cannot read project file %s", path), err)
	}

	var version string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var descriptor struct {
			Version string `yaml:"version"`
		}
		if err := yaml.Unmarshal(data, &descriptor); err != nil {
			return "", slipwayerrors.NewValidationError("projects", fmt.Sprintf("cannot decode project file %s", path), err)
		}
		version = descriptor.Version
	case ".json":
		var descriptor struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(data, &descriptor); err != nil {
			return "", slipwayerrors.NewValidationError("projects", fmt.Sprintf("cannot decode project file %s", path), err)
		}
		version = descriptor.Version
	default:
		return "", slipwayerrors.NewValidationError("projects", fmt.Sprintf("unsupported project file format %s", path), nil)
	}

	version = strings.TrimSpace(version)
	if version == "" {
		return "", slipwayerrors.NewValidationError("projects", fmt.Sprintf("project file %s declares no version property", path), nil)
	}

	return version, nil
}
