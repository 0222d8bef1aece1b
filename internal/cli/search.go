package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search plugins by name and description",
		Long: `Search the script directory case-insensitively. Exact name matches rank
first, then name matches, then description matches. Finding nothing is not
an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0])
		},
	}
}

func runSearch(cmd *cobra.Command, term string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.ensureCatalog(cmd.Context()); err != nil {
		return err
	}

	matches := app.engine.Search(term)
	if len(matches) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No plugins matching %q.\n", term)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, entry := range matches {
		fmt.Fprintf(out, "%s  %s\n", styleName(entry.Name), fadedStyle.Render("("+entry.ID+")"))
		if entry.Desc != "" {
			fmt.Fprintf(out, "    %s\n", firstLine(entry.Desc))
		}
		if !entry.Installable() {
			fmt.Fprintf(out, "    %s\n", warnStyle.Render("not yet installable"))
		}
	}
	return nil
}
