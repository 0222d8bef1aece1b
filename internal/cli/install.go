package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mplug-cli/mplug/internal/catalog"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install <name|id>",
		Short: "Install a plugin by name or plugin id",
		Long: `Install a plugin from the mpv script directory.

The argument is matched against plugin ids first, then against plugin names.
When several plugins share the name, a picker is shown on a terminal;
otherwise the candidate ids are listed so one can be passed directly.`,
		Example: `  # Install by name
  mplug install autocrop

  # Install by unambiguous plugin id
  mplug install mpv_thumbnail_script`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0])
		},
	}
}

func runInstall(cmd *cobra.Command, identifier string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := app.ensureCatalog(ctx); err != nil {
		return err
	}

	result, err := app.engine.Install(ctx, identifier)

	var ambiguous *catalog.AmbiguousError
	if errors.As(err, &ambiguous) {
		id, pickErr := pickCandidate(cmd, ambiguous)
		if pickErr != nil {
			return pickErr
		}
		result, err = app.engine.Install(ctx, id)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s (%s)\n", styleName(result.Entry.Name), shortRef(result.Record.InstalledRef))
	if notes := strings.TrimSpace(result.Entry.InstallNotes); notes != "" {
		fmt.Fprintln(cmd.OutOrStdout(), indent(notes))
	}
	return nil
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
