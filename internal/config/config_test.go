package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "awards.db", cfg.Store.SQLitePath)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Equal(t, "https://en.wikipedia.org/wiki", cfg.Wiki.BaseURL)
	assert.Equal(t, 15, cfg.Wiki.TimeoutSecs)
	assert.InDelta(t, 4.0, cfg.Wiki.RatePerSec, 0.001)
	assert.Equal(t, 1, cfg.Scrape.FromEdition)
	assert.Equal(t, 97, cfg.Scrape.ToEdition)
	assert.Equal(t, 4, cfg.Scrape.MaxConcurrent)
	assert.True(t, cfg.Export.Enabled)
	assert.Equal(t, "editions.csv", cfg.Export.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/test-awards.db
wiki:
  rate_per_sec: 1.5
scrape:
  from_edition: 90
  to_edition: 97
  max_concurrent: 2
export:
  enabled: false
log:
  level: debug
  format: console
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/test-awards.db", cfg.Store.SQLitePath)
	assert.InDelta(t, 1.5, cfg.Wiki.RatePerSec, 0.001)
	assert.Equal(t, 90, cfg.Scrape.FromEdition)
	assert.Equal(t, 2, cfg.Scrape.MaxConcurrent)
	assert.False(t, cfg.Export.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("AWARDS_STORE_DRIVER", "sqlite")
	t.Setenv("AWARDS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))
}

func TestInitLoggerBadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
}
