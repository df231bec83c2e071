package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/engine"
	"github.com/slipway-io/slipway/internal/gitx"
	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/model"
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/registry"
	"github.com/slipway-io/slipway/internal/tui"
)

type runOptions struct {
	ConfigPath     string
	Verbose        bool
	NonInteractive bool
}

var runCmdRunner = runRun

func newRunCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the release pipeline from the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmdRunner(root.runOptions())
		},
	}

	return cmd
}

func runRun(opts runOptions) error {
	cfgPath, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	// The settings file anchors the run: the repository, project files and
	// artifacts all resolve relative to its directory.
	workDir := filepath.Dir(cfgPath)
	repo, err := gitx.Open(workDir)
	if err != nil {
		return err
	}

	invoker := plugin.NewInvoker(log, builtinCatalog(), overrides)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engOpts := engine.Options{
		Config:    cfg,
		Registry:  registry.FromConfig(cfg),
		Invoker:   invoker,
		Repo:      repo,
		Log:       log,
		WorkDir:   workDir,
		ConfigDir: workDir,
	}

	if opts.NonInteractive {
		engOpts.Reporter = &logReporter{log: log}
		eng, err := engine.New(engOpts)
		if err != nil {
			return err
		}
		_, runErr := eng.Run(ctx)
		return runErr
	}

	modelState := tui.NewModel(cfg, cfg.Plugins, false)
	program := tea.NewProgram(modelState)
	reporter := tui.NewReporter(program)

	engOpts.Reporter = reporter
	eng, err := engine.New(engOpts)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	var programErr error
	go func() {
		// Quitting the display early cancels the run as well.
		_, programErr = program.Run()
		cancel()
		close(done)
	}()

	summary, runErr := eng.Run(ctx)
	reporter.RunFinished(summary)
	<-done

	if programErr != nil {
		return programErr
	}
	return runErr
}

// logReporter narrates plugin progress for plain runs. Skips and failures
// are already logged by the invoker, so only the happy path speaks here.
type logReporter struct {
	log *logger.Logger
}

func (r *logReporter) PluginStarted(name string, stage config.Stage) {
	if name == "" {
		return
	}
	r.log.WithPlugin(name).Info(fmt.Sprintf("running %s stage plugin", stage))
}

func (r *logReporter) PluginFinished(result model.PluginResult) {
	if result.Status != model.StatusSuccess {
		return
	}
	r.log.WithPlugin(result.Plugin).WithFields(map[string]any{
		"duration": result.Duration.String(),
	}).Info("plugin succeeded")
}
