// Package engine orchestrates install, upgrade, uninstall and enable/disable
// over the catalog, registry and VCS operator. Stores are injected as
// interfaces so tests run against in-memory fakes without touching the
// network or the user's filesystem.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mplug-cli/mplug/internal/catalog"
	"github.com/mplug-cli/mplug/internal/gitvcs"
	"github.com/mplug-cli/mplug/internal/registry"
)

// Error types for engine operations.
var (
	// ErrAlreadyInstalled indicates the plugin is not in the Absent state.
	ErrAlreadyInstalled = errors.New("plugin already installed")

	// ErrNotInstalled indicates no registry record exists for the plugin.
	ErrNotInstalled = errors.New("plugin not installed")

	// ErrNotInstallable indicates the catalog entry has no install targets
	// yet. The script directory is community maintained; adding the missing
	// metadata upstream makes the plugin installable.
	ErrNotInstallable = errors.New("plugin has no install instructions")
)

// Catalog is the snapshot view the engine resolves and searches against.
type Catalog interface {
	catalog.Snapshot
	Search(term string) []catalog.Entry
	Refresh(ctx context.Context) error
}

// Registry is the persistent installed-plugin store.
type Registry interface {
	Get(id string) (registry.Record, error)
	List() []registry.Record
	Put(rec registry.Record) error
	Remove(id string) error
	SetState(id string, state registry.State) error
}

// VCS materializes, updates and removes plugin clones.
type VCS interface {
	Materialize(ctx context.Context, source, dest string) (string, error)
	Update(ctx context.Context, dest string) (string, error)
	Remove(dest string) error
}

// Engine drives one logical operation per call, keeping registry and
// filesystem consistent across failures.
type Engine struct {
	catalog  Catalog
	registry Registry
	vcs      VCS
	paths    Paths

	// warnings about skipped or tolerated conditions go here; stderr in the
	// CLI, a buffer in tests.
	warn io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithWarnings directs non-fatal warnings to w instead of stderr.
func WithWarnings(w io.Writer) Option {
	return func(e *Engine) { e.warn = w }
}

// New wires an engine from its three stores and the destination paths.
func New(cat Catalog, reg Registry, vcs VCS, paths Paths, opts ...Option) *Engine {
	e := &Engine{
		catalog:  cat,
		registry: reg,
		vcs:      vcs,
		paths:    paths,
		warn:     os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) warnf(format string, args ...any) {
	fmt.Fprintf(e.warn, format+"\n", args...)
}

// InstallResult reports a completed install: the resolved entry (whose
// install notes the CLI prints) and the new registry record.
type InstallResult struct {
	Entry  catalog.Entry
	Record registry.Record
}

// Install resolves identifier, clones the plugin into the work directory,
// links its files into the mpv directories and records it as enabled. A
// stale registry record whose clone vanished is repaired, not an obstacle.
func (e *Engine) Install(ctx context.Context, identifier string) (InstallResult, error) {
	entry, err := catalog.Resolve(e.catalog, identifier)
	if err != nil {
		return InstallResult{}, err
	}

	if rec, err := e.registry.Get(entry.ID); err == nil {
		if _, statErr := os.Stat(rec.LocalPath); statErr == nil {
			return InstallResult{}, fmt.Errorf("%q: %w", entry.ID, ErrAlreadyInstalled)
		}
		// Clone vanished out from under us. Drop the stale record and any
		// surviving links, then install from scratch.
		e.warnf("warning: %s: clone missing at %s, reinstalling", rec.ID, rec.LocalPath)
		e.unlinkTargets(rec.LocalPath, rec.Targets)
		if err := e.registry.Remove(rec.ID); err != nil {
			return InstallResult{}, fmt.Errorf("repair stale record for %q: %w", rec.ID, err)
		}
	}

	if !entry.Installable() {
		return InstallResult{}, fmt.Errorf("%q: %w", entry.ID, ErrNotInstallable)
	}

	dest, err := e.paths.CloneDir(entry)
	if err != nil {
		return InstallResult{}, err
	}
	_, statErr := os.Stat(dest)
	freshClone := os.IsNotExist(statErr)

	ref, err := e.vcs.Materialize(ctx, entry.SourceLocation, dest)
	if err != nil {
		return InstallResult{}, fmt.Errorf("install %q: %w", entry.ID, err)
	}

	if err := e.linkTargets(dest, entry.Targets); err != nil {
		e.unlinkTargets(dest, entry.Targets)
		if freshClone {
			os.RemoveAll(dest)
		}
		return InstallResult{}, fmt.Errorf("install %q: %w", entry.ID, err)
	}

	rec := registry.Record{
		ID:           entry.ID,
		LocalPath:    dest,
		InstalledRef: ref,
		State:        registry.StateEnabled,
		InstalledAt:  time.Now(),
		Targets:      entry.Targets,
	}
	if err := e.registry.Put(rec); err != nil {
		e.unlinkTargets(dest, entry.Targets)
		if freshClone {
			os.RemoveAll(dest)
		}
		return InstallResult{}, fmt.Errorf("install %q: %w", entry.ID, err)
	}
	return InstallResult{Entry: entry, Record: rec}, nil
}

// Uninstall removes the plugin's links, its clone and its registry record,
// returning the plugin to the Absent state from either installed state. A
// clone that already vanished is treated as satisfied.
func (e *Engine) Uninstall(ctx context.Context, id string) error {
	rec, err := e.registry.Get(id)
	if err != nil {
		return fmt.Errorf("%q: %w", id, ErrNotInstalled)
	}

	e.unlinkTargets(rec.LocalPath, rec.Targets)

	if err := e.vcs.Remove(rec.LocalPath); err != nil && !errors.Is(err, gitvcs.ErrNotFound) {
		return fmt.Errorf("uninstall %q: %w", id, err)
	}

	return e.registry.Remove(id)
}

// UpgradeOutcome classifies one plugin's upgrade attempt.
type UpgradeOutcome int

const (
	// Upgraded means the clone was fast-forwarded (possibly a no-op) and the
	// recorded revision refreshed.
	Upgraded UpgradeOutcome = iota
	// Skipped means the source was unreachable; the local copy and its
	// record are unchanged and the upgrade should be retried later.
	Skipped
	// Failed means the upgrade could not be applied for a non-network
	// reason, such as local modifications.
	Failed
)

// UpgradeResult reports one plugin's upgrade attempt in a batch.
type UpgradeResult struct {
	ID      string
	Ref     string
	Outcome UpgradeOutcome
	Err     error
}

// Upgrade fast-forwards a single installed plugin and records the new
// revision. The enabled/disabled state is preserved.
func (e *Engine) Upgrade(ctx context.Context, id string) (UpgradeResult, error) {
	rec, err := e.registry.Get(id)
	if err != nil {
		return UpgradeResult{}, fmt.Errorf("%q: %w", id, ErrNotInstalled)
	}
	res := e.upgradeRecord(ctx, rec)
	if res.Outcome == Failed {
		return res, res.Err
	}
	return res, nil
}

// UpgradeAll upgrades every installed plugin. One plugin's failure never
// aborts the rest; per-plugin results are collected for the caller's
// summary.
func (e *Engine) UpgradeAll(ctx context.Context) []UpgradeResult {
	records := e.registry.List()
	results := make([]UpgradeResult, 0, len(records))
	for _, rec := range records {
		results = append(results, e.upgradeRecord(ctx, rec))
	}
	return results
}

func (e *Engine) upgradeRecord(ctx context.Context, rec registry.Record) UpgradeResult {
	ref, err := e.vcs.Update(ctx, rec.LocalPath)
	if err != nil {
		if errors.Is(err, gitvcs.ErrSourceUnreachable) {
			e.warnf("warning: %s: source unreachable, upgrade skipped", rec.ID)
			return UpgradeResult{ID: rec.ID, Ref: rec.InstalledRef, Outcome: Skipped, Err: err}
		}
		return UpgradeResult{ID: rec.ID, Ref: rec.InstalledRef, Outcome: Failed, Err: err}
	}

	if ref != rec.InstalledRef {
		rec.InstalledRef = ref
		if err := e.registry.Put(rec); err != nil {
			return UpgradeResult{ID: rec.ID, Ref: ref, Outcome: Failed, Err: err}
		}
	}
	return UpgradeResult{ID: rec.ID, Ref: ref, Outcome: Upgraded}
}

// Disable removes the plugin's links so mpv stops loading it, keeping the
// clone on disk. Disabling an already-disabled plugin succeeds without side
// effects.
func (e *Engine) Disable(id string) error {
	rec, err := e.registry.Get(id)
	if err != nil {
		return fmt.Errorf("%q: %w", id, ErrNotInstalled)
	}
	if rec.State == registry.StateDisabled {
		return nil
	}
	e.unlinkTargets(rec.LocalPath, rec.Targets)
	return e.registry.SetState(id, registry.StateDisabled)
}

// Enable recreates the plugin's links. Enabling an already-enabled plugin
// succeeds without side effects.
func (e *Engine) Enable(id string) error {
	rec, err := e.registry.Get(id)
	if err != nil {
		return fmt.Errorf("%q: %w", id, ErrNotInstalled)
	}
	if rec.State == registry.StateEnabled {
		return nil
	}
	if _, err := os.Stat(rec.LocalPath); err != nil {
		return fmt.Errorf("enable %q: clone missing at %s, run install to repair", id, rec.LocalPath)
	}
	if err := e.linkTargets(rec.LocalPath, rec.Targets); err != nil {
		e.unlinkTargets(rec.LocalPath, rec.Targets)
		return fmt.Errorf("enable %q: %w", id, err)
	}
	return e.registry.SetState(id, registry.StateEnabled)
}

// RefreshCatalog replaces the catalog snapshot. On failure the local catalog
// and registry are untouched.
func (e *Engine) RefreshCatalog(ctx context.Context) error {
	return e.catalog.Refresh(ctx)
}

// Search returns ranked catalog matches. An empty result is success.
func (e *Engine) Search(term string) []catalog.Entry {
	return e.catalog.Search(term)
}

// ListInstalled returns the registry contents ordered by id.
func (e *Engine) ListInstalled() []registry.Record {
	return e.registry.List()
}
