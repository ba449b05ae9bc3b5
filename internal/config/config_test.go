package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "file::memory:", cfg.Storage.SQLiteDSN)
	assert.False(t, cfg.Ingest.Strict)
	assert.False(t, cfg.Ingest.ExcludeDefaultProbes)
	assert.Empty(t, cfg.Ingest.ExcludeEndpoints)
	assert.Empty(t, cfg.Ingest.ExcludeRegex)
	assert.Equal(t, 10, cfg.Query.TopEndpoints)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
storage:
  backend: "sqlite"
ingest:
  strict: true
  exclude_endpoints:
    - "GET /healthz"
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.True(t, cfg.Ingest.Strict)
	assert.Equal(t, []string{"GET /healthz"}, cfg.Ingest.ExcludeEndpoints)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, "file::memory:", cfg.Storage.SQLiteDSN)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Query.TopEndpoints)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.Error(t, err)
}

func TestLoadIfExistsFallsBackToDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadIfExists(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// Nothing is written
	_, statErr := os.Stat(cfgPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadIfExistsReadsFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("query:\n  top_endpoints: 3\n"), 0644))

	cfg, err := LoadIfExists(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Query.TopEndpoints)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)

	// Should return defaults
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// File should now exist on disk
	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// File should be valid YAML loadable again
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
}

func TestLoadOrCreateLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
metrics:
  enabled: false
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.False(t, cfg.Metrics.Enabled)
	// Other fields remain defaults
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadWithExcludeRegex(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
ingest:
  exclude_default_probes: true
  exclude_regex:
    - "^GET /internal/"
    - "^OPTIONS "
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.True(t, cfg.Ingest.ExcludeDefaultProbes)
	assert.Equal(t, []string{"^GET /internal/", "^OPTIONS "}, cfg.Ingest.ExcludeRegex)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/x/y.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y.yaml"), got)

	got, err = ExpandPath("/etc/apmq.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/apmq.yaml", got)
}
