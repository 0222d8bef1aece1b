package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <id>",
		Short: "Remove a plugin from the system",
		Long: `Remove a plugin's links, delete its clone from the work directory and
drop it from the registry, whether it is currently enabled or disabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd, args[0])
		},
	}
}

func runUninstall(cmd *cobra.Command, id string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := app.engine.Uninstall(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s.\n", id)
	return nil
}
