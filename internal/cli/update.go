package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the list of available plugins",
		Long: `Fetch the current mpv script directory snapshot and replace the local
cache. On failure the previous snapshot stays in effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd)
		},
	}
}

func runUpdate(cmd *cobra.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := app.engine.RefreshCatalog(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Catalog updated, %d plugins known.\n", len(app.store.All()))
	return nil
}
