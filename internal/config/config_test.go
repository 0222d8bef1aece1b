package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"XDG_DATA_HOME", "XDG_CONFIG_HOME", "APPDATA", "MPV_HOME", "MPLUG_CONFIG_PATH", "MPLUG_CATALOG_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.json"))
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, filepath.Join(home, ".mplug"), cfg.WorkDir)
	assert.Equal(t, filepath.Join(home, ".mpv"), cfg.MpvDir)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
}

func TestLoad_XDGDirectories(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.json"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data", "mplug"), cfg.WorkDir)
	assert.Equal(t, filepath.Join("/conf", "mpv"), cfg.MpvDir)
	assert.Equal(t, filepath.Join("/conf", "mpv", "scripts"), cfg.ScriptDir())
	assert.Equal(t, filepath.Join("/conf", "mpv", "script-opts"), cfg.ScriptOptsDir())
	assert.Equal(t, filepath.Join("/conf", "mpv", "shaders"), cfg.ShaderDir())
	assert.Equal(t, filepath.Join("/conf", "mpv", "fonts"), cfg.FontDir())
	assert.Equal(t, filepath.Join("/data", "mplug", "catalog.json"), cfg.CatalogCachePath())
	assert.Equal(t, filepath.Join("/data", "mplug", "installed.json"), cfg.RegistryPath())
}

func TestLoad_MpvHomeWinsOverXDG(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	t.Setenv("MPV_HOME", "/custom/mpv")

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.json"))
	require.NoError(t, err)
	assert.Equal(t, "/custom/mpv", cfg.MpvDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	  "catalog_url": "https://mirror.example.com/directory.json",
	  "work_dir": "/srv/mplug",
	  "request_timeout_seconds": 5
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/directory.json", cfg.CatalogURL)
	assert.Equal(t, "/srv/mplug", cfg.WorkDir)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"catalog_url": "https://file.example.com/d.json"}`), 0o644))
	t.Setenv("MPLUG_CATALOG_URL", "https://env.example.com/d.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/d.json", cfg.CatalogURL)
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
