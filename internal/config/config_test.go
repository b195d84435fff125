package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("minify = true\noutput_dir = \"dist\"\nlog_level = \"info\"\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Minify)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("minify = true\nlog_level = \"info\"\n"), 0o644))
	t.Setenv("WRETCHED_MINIFY", "false")
	t.Setenv("WRETCHED_LOG_FORMAT", "json")
	t.Setenv("WRETCHED_SEED", "42")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Minify)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestLoadFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("minify = \n"), 0o644))
	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "error decoding config file")

	t.Setenv("WRETCHED_MINIFY", "maybe")
	_, err = LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorContains(t, err, "error reading environment")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wretched", "config.toml")
	require.NoError(t, WriteDefault(path, false))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.ErrorContains(t, WriteDefault(path, false), "already exists")
	assert.NoError(t, WriteDefault(path, true))
}

func TestGetConfigFilePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "wretched", "config.toml"), GetConfigFilePath())
}
