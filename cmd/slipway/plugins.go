package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slipway-io/slipway/internal/plugin"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the plugins available to this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCatalogs(cmd.OutOrStdout(), builtinCatalog(), overrides)
			return nil
		},
	}

	return cmd
}

func printCatalogs(out io.Writer, catalogs ...*plugin.Catalog) {
	for _, catalog := range catalogs {
		if catalog == nil || catalog.Len() == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", catalog.Name())
		for _, name := range catalog.Names() {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
}
