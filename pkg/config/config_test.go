package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "https://api.b0.dev", cfg.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Token)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
base_url: https://b0.example.com
token: tok-123
log_level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://b0.example.com", cfg.BaseURL)
	assert.Equal(t, "tok-123", cfg.Token)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
base_url: https://b0.example.com
token: from-file
`)

	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://b0.example.com", cfg.BaseURL)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestDraftDirDefaultsNextToConfig(t *testing.T) {
	path := writeConfig(t, "base_url: https://b0.example.com\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "drafts"), cfg.DraftDir)
}

func TestInvalidLogLevelRejected(t *testing.T) {
	path := writeConfig(t, "log_level: loud\n")

	_, err := Load(path)

	require.Error(t, err)
}

func TestInvalidBaseURLRejected(t *testing.T) {
	path := writeConfig(t, "base_url: not a url\n")

	_, err := Load(path)

	require.Error(t, err)
}

func TestMalformedYAMLRejected(t *testing.T) {
	path := writeConfig(t, "base_url: [unclosed\n")

	_, err := Load(path)

	require.Error(t, err)
}
