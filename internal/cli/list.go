package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListInstalledCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-installed",
		Short: "List all plugins installed with mplug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListInstalled(cmd)
		},
	}
}

func runListInstalled(cmd *cobra.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	records := app.engine.ListInstalled()
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plugins installed.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tREVISION\tPATH")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.State, shortRef(rec.InstalledRef), rec.LocalPath)
	}
	return w.Flush()
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
