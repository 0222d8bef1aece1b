package catalog

import "sort"

// TargetKind names the mpv destination a plugin file belongs to.
type TargetKind string

const (
	KindScript     TargetKind = "script"
	KindScriptOpts TargetKind = "script-opts"
	KindShader     TargetKind = "shader"
	KindFont       TargetKind = "font"
	KindExe        TargetKind = "exe"
)

// InstallTarget maps a file inside a plugin's repository to the kind of
// directory it must be linked into.
type InstallTarget struct {
	File string     `json:"file"`
	Kind TargetKind `json:"kind"`
}

// Entry is one plugin in the script directory. Entries without install
// targets are known but not yet installable; the directory is community
// maintained and incomplete metadata is expected.
type Entry struct {
	ID             string
	Name           string
	Desc           string
	SourceLocation string
	GitDir         string
	InstallNotes   string
	Targets        []InstallTarget
}

// Installable reports whether the entry carries enough metadata to install.
func (e Entry) Installable() bool {
	return e.SourceLocation != "" && len(e.Targets) > 0
}

// upstreamEntry is the wire format of mpv_script_directory.json, an object
// keyed by plugin id. Only the "git" install method is supported; entries
// with other methods decode to non-installable entries rather than errors.
type upstreamEntry struct {
	Name           string   `json:"name"`
	Desc           string   `json:"desc"`
	Install        string   `json:"install"`
	Git            string   `json:"git"`
	GitDir         string   `json:"gitdir"`
	ScriptFiles    []string `json:"scriptfiles"`
	ScriptOptFiles []string `json:"scriptoptfiles"`
	ShaderFiles    []string `json:"shaderfiles"`
	FontFiles      []string `json:"fontfiles"`
	ExeFiles       []string `json:"exefiles"`
	InstallNotes   string   `json:"install-notes"`
}

func (u upstreamEntry) toEntry(id string) Entry {
	entry := Entry{
		ID:             id,
		Name:           u.Name,
		Desc:           u.Desc,
		SourceLocation: u.Git,
		GitDir:         u.GitDir,
		InstallNotes:   u.InstallNotes,
	}
	if u.Install != "git" || u.Git == "" {
		return entry
	}
	appendTargets := func(files []string, kind TargetKind) {
		for _, f := range files {
			entry.Targets = append(entry.Targets, InstallTarget{File: f, Kind: kind})
		}
	}
	appendTargets(u.ScriptFiles, KindScript)
	appendTargets(u.ScriptOptFiles, KindScriptOpts)
	appendTargets(u.ShaderFiles, KindShader)
	appendTargets(u.FontFiles, KindFont)
	appendTargets(u.ExeFiles, KindExe)
	return entry
}

func sortByID(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
}
