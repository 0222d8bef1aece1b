package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// DefaultCatalogURL is the published snapshot of the mpv script directory.
const DefaultCatalogURL = "https://raw.githubusercontent.com/Nudin/mpv-script-directory/master/mpv_script_directory.json"

// Config holds the paths and settings mplug operates with. All fields have
// working defaults; a config file and environment variables can override them.
type Config struct {
	CatalogURL string `json:"catalog_url"`
	WorkDir    string `json:"work_dir"`
	MpvDir     string `json:"mpv_dir"`
	ExecDir    string `json:"exec_dir"`

	// RequestTimeoutSeconds bounds catalog fetches and git network operations.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// Load reads the configuration file at configPath, falling back to defaults
// for anything unset. A missing file is not an error; a malformed one is.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		CatalogURL:            DefaultCatalogURL,
		WorkDir:               defaultWorkDir(),
		MpvDir:                defaultMpvDir(),
		ExecDir:               defaultExecDir(),
		RequestTimeoutSeconds: 60,
	}

	if configPath == "" {
		configPath = os.Getenv("MPLUG_CONFIG_PATH")
		if configPath == "" {
			configPath = filepath.Join(cfg.WorkDir, "config.json")
		}
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if url := os.Getenv("MPLUG_CATALOG_URL"); url != "" {
		cfg.CatalogURL = url
	}

	return cfg, nil
}

// Timeout returns the bounded network timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CatalogCachePath is the durable copy of the last good catalog snapshot.
func (c *Config) CatalogCachePath() string {
	return filepath.Join(c.WorkDir, "catalog.json")
}

// RegistryPath is the installed-plugin registry file.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.WorkDir, "installed.json")
}

// ScriptDir is where mpv looks for lua/js scripts.
func (c *Config) ScriptDir() string { return filepath.Join(c.MpvDir, "scripts") }

// ScriptOptsDir is where mpv looks for script configuration files.
func (c *Config) ScriptOptsDir() string { return filepath.Join(c.MpvDir, "script-opts") }

// ShaderDir is where mpv looks for glsl shader hooks.
func (c *Config) ShaderDir() string { return filepath.Join(c.MpvDir, "shaders") }

// FontDir is where mpv looks for fonts used by scripts.
func (c *Config) FontDir() string { return filepath.Join(c.MpvDir, "fonts") }

// defaultWorkDir picks the directory that holds plugin clones and state,
// preferring XDG on Linux, APPDATA on Windows, a dotdir otherwise.
func defaultWorkDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mplug")
	}
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "mplug")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mplug"
	}
	return filepath.Join(home, ".mplug")
}

// defaultMpvDir locates the mpv configuration directory, usually
// ~/.config/mpv on Linux and macOS.
func defaultMpvDir() string {
	if mpvHome := os.Getenv("MPV_HOME"); mpvHome != "" {
		return mpvHome
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mpv")
	}
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "mpv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mpv"
	}
	return filepath.Join(home, ".mpv")
}

func defaultExecDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bin"
	}
	return filepath.Join(home, ".local", "bin")
}
