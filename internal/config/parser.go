package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	slipwayerrors "github.com/slipway-io/slipway/pkg/errors"
)

const (
	// DefaultFileName is the settings file looked up when no --config flag
	// is given.
	DefaultFileName = "slipway.yaml"
	// DefaultArtifactsDir receives built outputs when the settings file
	// does not name one.
	DefaultArtifactsDir = "artifacts"
	// DefaultRemote is the git remote consulted for tags.
	DefaultRemote = "origin"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads a settings file from disk, applies defaults, validates it, and
// returns the resulting model.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, slipwayerrors.NewParseError(path, 0, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, slipwayerrors.NewParseError(path, extractLine(err), err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Artifacts == "" {
		cfg.Artifacts = DefaultArtifactsDir
	}
	if cfg.Remote == "" {
		cfg.Remote = DefaultRemote
	}
}

// Validate performs structural validation on an entire configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return slipwayerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	for i, entry := range cfg.Plugins {
		if !entry.Stage.Valid() {
			return slipwayerrors.NewValidationError(
				fieldForPlugin(i, "stage"),
				fmt.Sprintf("unknown stage %q (valid: %v)", entry.Stage, Stages()), nil)
		}
	}

	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
