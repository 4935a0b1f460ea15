package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err, "a missing config file is fine")

	assert.Equal(t, "xlsx", cfg.Workbook.Driver)
	assert.Equal(t, "prospecting.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "prospecting_selected", cfg.HubSpot.MarkerProperty)
	assert.Equal(t, 100, cfg.HubSpot.PageSize)
	assert.Equal(t, 5, cfg.Apollo.MaxPerAccount)
	assert.Equal(t, "email_not_unlocked@domain.com", cfg.Apollo.PlaceholderAddress)
	assert.Equal(t, 500, cfg.BigQuery.PollInterval)
	assert.Equal(t, 240, cfg.BigQuery.MaxPolls)
	assert.NotEmpty(t, cfg.Anthropic.Model)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
workbook:
  driver: sqlite
  path: /tmp/prospects.db
apollo:
  max_per_account: 3
  allowed_stages:
    - Cold
    - Warm
bigquery:
  max_polls: 0
log:
  level: debug
  format: console
`), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Workbook.Driver)
	assert.Equal(t, "/tmp/prospects.db", cfg.Workbook.Path)
	assert.Equal(t, 3, cfg.Apollo.MaxPerAccount)
	assert.Equal(t, []string{"Cold", "Warm"}, cfg.Apollo.AllowedStages)
	assert.Zero(t, cfg.BigQuery.MaxPolls, "zero disables the poll ceiling")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100, cfg.HubSpot.PageSize, "unset keys keep their defaults")
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0o644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
