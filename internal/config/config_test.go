package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  content_dir: docs
  public_dir: out
build:
  workers: 2
  continue_on_error: false
  cache_db: ""
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Site.ContentDir)
	assert.Equal(t, "out", cfg.Site.PublicDir)
	assert.Equal(t, "static/template.html", cfg.Site.Template, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Build.Workers)
	assert.False(t, cfg.Build.ContinueOnError)
	assert.Empty(t, cfg.Build.CacheDB)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MDSITE_CONTENT_DIR", "pages")
	t.Setenv("MDSITE_WORKERS", "8")
	t.Setenv("MDSITE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(writeConfig(t, "site:\n  content_dir: docs\n"))
	require.NoError(t, err)
	assert.Equal(t, "pages", cfg.Site.ContentDir)
	assert.Equal(t, 8, cfg.Build.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "site: [unclosed"))
		assert.Error(t, err)
	})
	t.Run("Zero workers", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "build:\n  workers: 0\n"))
		assert.ErrorContains(t, err, "workers")
	})
	t.Run("Bad worker env", func(t *testing.T) {
		t.Setenv("MDSITE_WORKERS", "many")
		_, err := LoadConfig(writeConfig(t, ""))
		assert.ErrorContains(t, err, "MDSITE_WORKERS")
	})
	t.Run("Bad log level", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "log:\n  level: loud\n"))
		assert.ErrorContains(t, err, "log.level")
	})
}
