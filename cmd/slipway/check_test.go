package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slipwayerrors "github.com/slipway-io/slipway/pkg/errors"
)

func TestCheckPrintsReleaseContext(t *testing.T) {
	t.Parallel()

	cfgPath := writeProjectFixture(t, `project: demo
projects:
  - version.yaml
plugins:
  - name: pack
    enabled: true
    stage: Build
  - name: publish
    enabled: true
    stage: Release
    branches:
      - release
`)

	out, err := executeCommand(newRootCmd(), "check", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Project:   demo")
	assert.Contains(t, out, "Version:   1.2.3")
	assert.Contains(t, out, "Tag:       v1.2.3")
	assert.Contains(t, out, "standard mode")
	assert.Contains(t, out, "✔ pack")
	assert.Contains(t, out, "⊘ publish")
	assert.Contains(t, out, "will be skipped")
}

func TestCheckReportsUnknownPlugins(t *testing.T) {
	t.Parallel()

	cfgPath := writeProjectFixture(t, `project: demo
projects:
  - version.yaml
plugins:
  - name: ghost
    enabled: true
    stage: Build
`)

	out, err := executeCommand(newRootCmd(), "check", "--config", cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown plugins in configuration: ghost")
	assert.Contains(t, out, "✖ ghost")
}

func TestCheckFailsLikeARunWould(t *testing.T) {
	t.Parallel()

	cfgPath := writeProjectFixture(t, `project: demo
projects:
  - version.yaml
plugins:
  - name: publish
    enabled: true
    stage: Release
    branches:
      - release
    feed: https://feed.example.com
`)
	// A release branch without a matching version tag at HEAD is fatal.
	checkoutBranch(t, filepath.Dir(cfgPath), "release")

	_, err := executeCommand(newRootCmd(), "check", "--config", cfgPath)
	require.Error(t, err)

	var verr *slipwayerrors.ValidationError
	require.ErrorAs(t, err, &verr)
}
