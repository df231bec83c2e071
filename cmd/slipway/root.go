package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
	plain      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "slipway",
		Short:         "Slipway runs config-driven release pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation runs the pipeline; everything else comes
			// from the settings file.
			return runCmdRunner(flags.runOptions())
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to settings file (default slipway.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.plain, "plain", false, "Disable the interactive progress display")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newPluginsCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
