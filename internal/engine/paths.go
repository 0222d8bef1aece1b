package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mplug-cli/mplug/internal/catalog"
	"github.com/mplug-cli/mplug/internal/config"
)

// Paths holds the directories the engine clones into and links out of.
type Paths struct {
	WorkDir       string
	ScriptDir     string
	ScriptOptsDir string
	ShaderDir     string
	FontDir       string
	ExecDir       string
}

// PathsFromConfig maps the resolved configuration onto engine paths.
func PathsFromConfig(cfg *config.Config) Paths {
	return Paths{
		WorkDir:       cfg.WorkDir,
		ScriptDir:     cfg.ScriptDir(),
		ScriptOptsDir: cfg.ScriptOptsDir(),
		ShaderDir:     cfg.ShaderDir(),
		FontDir:       cfg.FontDir(),
		ExecDir:       cfg.ExecDir,
	}
}

// CloneDir picks the checkout location for an entry inside the work
// directory, preferring the directory suggested by the catalog. The result
// is required to stay under the work directory; catalog content is
// community-edited and must not be able to name paths outside it.
func (p Paths) CloneDir(entry catalog.Entry) (string, error) {
	sub := entry.GitDir
	if sub == "" {
		sub = filepath.Join("plugins", entry.ID)
	}
	dest := filepath.Join(p.WorkDir, sub)
	if !strings.HasPrefix(filepath.Clean(dest)+string(filepath.Separator), filepath.Clean(p.WorkDir)+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe clone path %q for plugin %q", sub, entry.ID)
	}
	return dest, nil
}

// DirFor returns the mpv directory files of the given kind are linked into.
func (p Paths) DirFor(kind catalog.TargetKind) (string, error) {
	switch kind {
	case catalog.KindScript:
		return p.ScriptDir, nil
	case catalog.KindScriptOpts:
		return p.ScriptOptsDir, nil
	case catalog.KindShader:
		return p.ShaderDir, nil
	case catalog.KindFont:
		return p.FontDir, nil
	case catalog.KindExe:
		return p.ExecDir, nil
	default:
		return "", fmt.Errorf("unknown install target kind %q", kind)
	}
}
