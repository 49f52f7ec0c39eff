package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config and home lookups at a temp dir
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{
		"CIRCLES_DATA_DIR", "CIRCLES_DB_PATH", "CIRCLES_SOCKET_PATH",
		"CIRCLES_DEBOUNCE_MS", "CIRCLES_SHARE_BASE_URL", "CIRCLES_LOG_LEVEL", "CIRCLES_THEME_FILE",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadConfigWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".circles", "data"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, ".circles", "circles.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, ".circles", "circles.sock"), cfg.SocketPath)
	assert.Equal(t, time.Second, cfg.Debounce())
	assert.Equal(t, DefaultShareBaseURL, cfg.ShareBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultTheme(), cfg.Theme)
}

func TestLoadConfigWithFile(t *testing.T) {
	dir := isolate(t)

	configDir := filepath.Join(dir, "circles")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	content := `debounce_ms: 250
share_base_url: "https://circles.example"
theme:
  preset: monochrome
  clear: "#00FF00"
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, "https://circles.example", cfg.ShareBaseURL)
	assert.Equal(t, "#00FF00", cfg.Theme.Clear)
	assert.Equal(t, MonochromeTheme().Confused, cfg.Theme.Confused, "unset colors come from the preset")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := isolate(t)

	configDir := filepath.Join(dir, "circles")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("debounce_ms: [oops"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CIRCLES_DATA_DIR", "/tmp/circles-data")
	t.Setenv("CIRCLES_DEBOUNCE_MS", "50")
	t.Setenv("CIRCLES_LOG_LEVEL", "debug")
	t.Setenv("CIRCLES_SOCKET_PATH", "/tmp/c.sock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/circles-data", cfg.DataDir)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/c.sock", cfg.SocketPath)
}

func TestThemeFileLoading(t *testing.T) {
	dir := isolate(t)

	themePath := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(themePath, []byte("theme:\n  accent: \"#FF0000\"\n"), 0o644))
	t.Setenv("CIRCLES_THEME_FILE", themePath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", cfg.Theme.Accent)
	assert.Equal(t, DefaultTheme().Partial, cfg.Theme.Partial)
}

func TestSaveConfig(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.DebounceMs = 400
	require.NoError(t, cfg.Save())

	_, err = os.Stat(filepath.Join(dir, "circles", "config.yaml"))
	require.NoError(t, err)

	cfg2, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 400, cfg2.DebounceMs)
}
