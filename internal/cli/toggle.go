package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a plugin without deleting it from the system",
		Long: `Remove the plugin's links so mpv stops loading it. The clone stays in
the work directory; enable restores it without touching the network.
Disabling an already-disabled plugin is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := app.engine.Disable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s.\n", args[0])
			return nil
		},
	}
}

func newEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <id>",
		Short: "Re-enable a disabled plugin",
		Long: `Recreate the plugin's links from its existing clone. Enabling an
already-enabled plugin is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := app.engine.Enable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s.\n", args[0])
			return nil
		},
	}
}
