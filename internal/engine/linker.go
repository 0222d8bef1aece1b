package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mplug-cli/mplug/internal/catalog"
)

// linkTargets symlinks each target file from the clone into its mpv
// directory. A destination that already exists is skipped with a warning,
// matching how users expect hand-placed scripts to survive an install.
// Target files are community-edited catalog content and must resolve inside
// the clone; offenders are skipped, never linked.
func (e *Engine) linkTargets(cloneDir string, targets []catalog.InstallTarget) error {
	for _, target := range targets {
		dir, err := e.paths.DirFor(target.Kind)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}

		src := filepath.Join(cloneDir, target.File)
		if !strings.HasPrefix(filepath.Clean(src)+string(filepath.Separator), filepath.Clean(cloneDir)+string(filepath.Separator)) {
			e.warnf("warning: %s names a file outside the plugin checkout, skipping", target.File)
			continue
		}
		dst := filepath.Join(dir, filepath.Base(target.File))

		if _, err := os.Lstat(dst); err == nil {
			e.warnf("warning: %s already exists, skipping", dst)
			continue
		}
		if err := os.Symlink(src, dst); err != nil {
			return fmt.Errorf("link %s: %w", dst, err)
		}
	}
	return nil
}

// unlinkTargets removes the symlinks for each target. A destination that is
// not a symlink was not placed by mplug; it is reported and left alone. A
// destination that is already gone is satisfied.
func (e *Engine) unlinkTargets(cloneDir string, targets []catalog.InstallTarget) {
	for _, target := range targets {
		dir, err := e.paths.DirFor(target.Kind)
		if err != nil {
			continue
		}
		dst := filepath.Join(dir, filepath.Base(target.File))

		info, err := os.Lstat(dst)
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink == 0 {
			e.warnf("warning: %s is not a symlink, leaving it in place", dst)
			continue
		}
		if err := os.Remove(dst); err != nil {
			e.warnf("warning: remove %s: %v", dst, err)
		}
	}
}
