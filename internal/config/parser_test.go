package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	slipwayerrors "github.com/slipway-io/slipway/pkg/errors"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slipway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	validYAML := `project: mylib
projects:
  - ./module.yaml
artifacts: out
plugins:
  - name: test
    enabled: true
    stage: Test
    command: "go test ./..."
  - name: publish
    enabled: true
    branches: main
    feed: https://feed.example.com/api/packages
`

	invalidYAML := `project: [broken
`

	missingProject := `projects:
  - ./module.yaml
`

	unknownStage := `project: mylib
projects:
  - ./module.yaml
plugins:
  - name: test
    stage: Deploy
`

	cases := []struct {
		name     string
		contents string
		assert   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:     "valid configuration is parsed",
			contents: validYAML,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				require.Equal(t, "mylib", cfg.Project)
				require.Equal(t, "out", cfg.Artifacts)
				require.Equal(t, DefaultRemote, cfg.Remote)
				require.Len(t, cfg.Plugins, 2)
				require.Equal(t, "test", cfg.Plugins[0].Name)
				require.Equal(t, StageTest, cfg.Plugins[0].Stage)
				require.True(t, cfg.Plugins[0].Enabled)
			},
		},
		{
			name:     "invalid yaml returns parse error",
			contents: invalidYAML,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.Error(t, err)
				var parseErr *slipwayerrors.ParseError
				require.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:     "missing project name returns validation error",
			contents: missingProject,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.Error(t, err)
				var validationErr *slipwayerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Field, "project")
			},
		},
		{
			name:     "unknown stage returns validation error",
			contents: unknownStage,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.Error(t, err)
				var validationErr *slipwayerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load(writeConfig(t, tc.contents))
			tc.assert(t, cfg, err)
		})
	}
}

func TestLoadMissingFileReturnsParseError(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var parseErr *slipwayerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "project: mylib\nprojects: [./module.yaml]\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultArtifactsDir, cfg.Artifacts)
	require.Equal(t, DefaultRemote, cfg.Remote)
	require.Empty(t, cfg.Plugins)
}
