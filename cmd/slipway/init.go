package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/slipway-io/slipway/internal/config"
)

const starterConfig = `# Slipway release pipeline settings.
project: my-project
projects:
  - version.yaml
artifacts: artifacts
remote: origin

plugins:
  - name: test
    enabled: true
    stage: Test
    command: go test ./...

  - name: pack
    enabled: true
    stage: Build

  - name: archive
    enabled: true
    stage: Release

  # Publish plugins only run on the listed branches.
  - name: publish
    enabled: false
    stage: Release
    branches:
      - release
    feed: https://feed.example.com/upload
    api_key_env: FEED_API_KEY
`

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter settings file in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), ".")
		},
	}

	return cmd
}

func runInit(out io.Writer, dir string) error {
	path, err := filepath.Abs(filepath.Join(dir, config.DefaultFileName))
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}
