// Package cli wires the mplug command tree. Commands build the catalog
// store, registry and engine from the resolved configuration; all actual
// semantics live in the internal packages underneath.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mplug-cli/mplug/internal/catalog"
	"github.com/mplug-cli/mplug/internal/config"
	"github.com/mplug-cli/mplug/internal/engine"
	"github.com/mplug-cli/mplug/internal/gitvcs"
	"github.com/mplug-cli/mplug/internal/registry"
)

// NewRootCommand builds the mplug command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mplug",
		Short: "mplug - plugin manager for mpv",
		Long: `mplug installs, upgrades, disables and uninstalls plugins, shaders and
other tools for the mpv media player. Plugins come from the community
maintained mpv script directory; mplug clones them into its work directory
and links their files into the folders mpv loads from, so enabling and
disabling a plugin never clutters your mpv config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file path (default is the work directory's config.json)")
	rootCmd.PersistentFlags().Bool("yes", false, "never prompt; fail instead of asking")

	rootCmd.AddCommand(newInstallCommand())
	rootCmd.AddCommand(newUninstallCommand())
	rootCmd.AddCommand(newUpgradeCommand())
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newEnableCommand())
	rootCmd.AddCommand(newDisableCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newListInstalledCommand())

	return rootCmd
}

// Execute runs the command tree and maps failures to a non-zero exit.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the stores and engine a command operates on.
type app struct {
	cfg    *config.Config
	store  *catalog.Store
	reg    *registry.Registry
	engine *engine.Engine
}

// newApp resolves configuration and opens the local state. The catalog is
// loaded from cache only; commands that need it current call ensureCatalog.
func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	store := catalog.NewStore(cfg.CatalogURL, cfg.CatalogCachePath(), cfg.Timeout())
	if err := store.Load(); err != nil {
		// A corrupt cache is recovered by the next refresh, not fatal here.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	reg, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		return nil, err
	}

	vcs := gitvcs.New(cfg.Timeout())
	eng := engine.New(store, reg, vcs, engine.PathsFromConfig(cfg))

	return &app{cfg: cfg, store: store, reg: reg, engine: eng}, nil
}

// ensureCatalog makes sure a usable snapshot is loaded before resolution or
// search. The staleness policy lives on the store.
func (a *app) ensureCatalog(ctx context.Context) error {
	return a.store.EnsureFresh(ctx, os.Stderr)
}

func assumeYes(cmd *cobra.Command) bool {
	yes, _ := cmd.Flags().GetBool("yes")
	return yes
}
