package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/gitx"
	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/registry"
	"github.com/slipway-io/slipway/internal/release"
)

type checkOptions struct {
	ConfigPath string
	Verbose    bool
}

var checkCmdRunner = runCheck

func newCheckCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build and print the release context without running plugins",
		Long: `Check resolves the release context exactly as a run would: project
version, current branch, release mode and tag. It fails on the same
conditions a run fails on, so it doubles as a preflight validation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := checkOptions{ConfigPath: root.configPath, Verbose: root.verbose}
			return checkCmdRunner(cmd.OutOrStdout(), opts)
		},
	}

	return cmd
}

func runCheck(out io.Writer, opts checkOptions) error {
	cfgPath, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Warnings still surface; the builder's info chatter would bury the
	// report otherwise.
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	workDir := filepath.Dir(cfgPath)
	repo, err := gitx.Open(workDir)
	if err != nil {
		return err
	}

	reg := registry.FromConfig(cfg)
	rctx, err := release.NewBuilder(cfg, reg, repo, log, workDir, workDir).Build()
	if err != nil {
		return err
	}

	mode := "standard"
	if rctx.IsReleaseBranch {
		mode = "release"
	}

	fmt.Fprintf(out, "Project:   %s\n", rctx.Project)
	fmt.Fprintf(out, "Branch:    %s (%s mode)\n", rctx.Branch, mode)
	fmt.Fprintf(out, "Version:   %s\n", rctx.Version)
	fmt.Fprintf(out, "Tag:       %s\n", rctx.Tag)
	fmt.Fprintf(out, "Artifacts: %s\n", rctx.ArtifactsDir)
	fmt.Fprintf(out, "Archive:   %s\n", rctx.ArchiveName)

	invoker := plugin.NewInvoker(log, builtinCatalog(), overrides)

	fmt.Fprintln(out, "\nPlugins:")
	var unknown []string
	for _, entry := range reg.Entries() {
		if strings.TrimSpace(entry.Name) == "" {
			fmt.Fprintln(out, "  ⊘ (unnamed entry, will be skipped)")
			continue
		}
		if _, ok := invoker.Resolve(entry.Name); !ok {
			unknown = append(unknown, entry.Name)
			fmt.Fprintf(out, "  ✖ %-14s %-8s unknown plugin\n", entry.Name, entry.Stage)
			continue
		}
		if invoker.Runnable(entry, rctx.Branch) {
			fmt.Fprintf(out, "  ✔ %-14s %s\n", entry.Name, entry.Stage)
		} else {
			fmt.Fprintf(out, "  ⊘ %-14s %-8s will be skipped\n", entry.Name, entry.Stage)
		}
	}

	if len(unknown) > 0 {
		return fmt.Errorf("unknown plugins in configuration: %s", strings.Join(unknown, ", "))
	}
	return nil
}
