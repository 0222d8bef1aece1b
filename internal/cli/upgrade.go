package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mplug-cli/mplug/internal/engine"
)

func newUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade all installed plugins",
		Long: `Fast-forward every installed plugin to its upstream tip. One plugin
failing never aborts the rest: unreachable sources are skipped with a
warning, everything else is reported in the summary and reflected in the
exit code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(cmd)
		},
	}
}

func runUpgrade(cmd *cobra.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	results := app.engine.UpgradeAll(cmd.Context())
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plugins installed.")
		return nil
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, res := range results {
		switch res.Outcome {
		case engine.Upgraded:
			fmt.Fprintf(out, "%s %s (%s)\n", successStyle.Render("ok  "), res.ID, shortRef(res.Ref))
		case engine.Skipped:
			fmt.Fprintf(out, "%s %s: %v\n", warnStyle.Render("skip"), res.ID, res.Err)
		case engine.Failed:
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", failStyle.Render("fail"), res.ID, res.Err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d plugins failed to upgrade", failed, len(results))
	}
	return nil
}
