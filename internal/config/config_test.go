package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFrom_MalformedFileReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o600))

	cfg, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFrom_PartialFileFallsBackOnUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_agent = "claude"
`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.DefaultAgent)
	assert.Equal(t, "table", cfg.DefaultFormat)
	assert.Equal(t, "cost", cfg.DefaultOptimizeFor)
	assert.Equal(t, 10, cfg.Logs.MaxSizeMB)
}

func TestLoadFrom_FullyPopulatedFileOverridesEveryDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_agent = "opencode"
default_format = "json"
default_optimize_for = "latency"

[discovery_roots]
codex = ".my-codex/sessions"

[logs]
level = "debug"
dir = "/tmp/aa-logs"
max_size_mb = 50
max_backups = 2
max_age_days = 3
compress = false
debug = true
pprof_enabled = true

[[pricing]]
model_id_pattern = "my-custom-model"
input_per_mtok = 1.5
output_per_mtok = 7.5
`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "opencode", cfg.DefaultAgent)
	assert.Equal(t, "json", cfg.DefaultFormat)
	assert.Equal(t, "latency", cfg.DefaultOptimizeFor)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.Equal(t, "/tmp/aa-logs", cfg.Logs.Dir)
	assert.Equal(t, 50, cfg.Logs.MaxSizeMB)
	assert.Equal(t, 2, cfg.Logs.MaxBackups)
	assert.Equal(t, 3, cfg.Logs.MaxAgeDays)
	assert.False(t, cfg.Logs.GetCompress())
	assert.True(t, cfg.Logs.Debug)
	assert.True(t, cfg.Logs.PprofEnabled)

	root, ok := cfg.DiscoveryRoot(model.AgentCodex)
	require.True(t, ok)
	assert.Equal(t, ".my-codex/sessions", root)

	_, ok = cfg.DiscoveryRoot(model.AgentPi)
	assert.False(t, ok)

	entries := cfg.PricingEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "my-custom-model", entries[0].ModelIDPattern)
	assert.Equal(t, 1.5, entries[0].InputPerMTok)
	assert.Equal(t, 7.5, entries[0].OutputPerMTok)
}

func TestLogSettings_GetCompressDefaultsTrue(t *testing.T) {
	var l LogSettings
	assert.True(t, l.GetCompress())
}

func TestPath_JoinsHomeAndConfigDir(t *testing.T) {
	assert.Equal(t, "/home/u/.agentaudit/config.toml", Path("/home/u"))
}
