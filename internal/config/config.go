// Package config loads user preferences from a TOML file at
// $HOME/.agentaudit/config.toml, the same way the teacher loads its own
// config.toml (internal/session.LoadUserConfig): BurntSushi/toml, missing
// file or missing fields fall back to documented defaults, and agentaudit
// never writes the file itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/pricing"
)

// ConfigDirName is the directory under $HOME holding agentaudit's config.
const ConfigDirName = ".agentaudit"

// ConfigFileName is the TOML config file for user preferences.
const ConfigFileName = "config.toml"

// Config is the on-disk shape of config.toml.
type Config struct {
	// DefaultAgent pre-selects a vendor for commands that accept --agent.
	// Valid values: "claude", "opencode", "codex", "pi", "kodo". Empty
	// means no default (every agent is considered).
	DefaultAgent string `toml:"default_agent"`

	// DefaultFormat is the output format: "table" (default), "json", or
	// "html" (printed as the table). Each command's --format flag itself defaults to "table", so
	// this value is used only when --format is given as an empty string.
	DefaultFormat string `toml:"default_format"`

	// DefaultOptimizeFor names an --optimize-for profile: "cost" (default),
	// "latency", or "reliability". It is loaded but no command reads it;
	// --optimize-for defaults to "cost".
	DefaultOptimizeFor string `toml:"default_optimize_for"`

	// Theme forces "dark" or "light" rendering. Empty defers to OS dark-mode
	// detection, the same fallback ladder the teacher's dark-mode-go based
	// ResolveTheme uses.
	Theme string `toml:"theme"`

	// Pricing lists additional catalog rows merged on top of the built-in
	// table via pricing.Catalog.Merge. A pattern here that collides with a
	// built-in pattern simply adds a second candidate entry; the longest-
	// prefix/lexicographic tiebreak in the pricing package decides which
	// wins, same as two built-in entries would.
	Pricing []PricingOverride `toml:"pricing"`

	// DiscoveryRoots holds per-agent vendor root directories (relative to
	// $HOME), keyed by agent kind string, readable via DiscoveryRoot.
	// Discovery does not consult them; it always walks the built-in roots.
	DiscoveryRoots map[string]string `toml:"discovery_roots"`

	// Logs configures structured logging.
	Logs LogSettings `toml:"logs"`
}

// PricingOverride is one user-supplied pricing.Entry, named to match the
// TOML key for each rate.
type PricingOverride struct {
	ModelIDPattern    string  `toml:"model_id_pattern"`
	InputPerMTok      float64 `toml:"input_per_mtok"`
	OutputPerMTok     float64 `toml:"output_per_mtok"`
	CacheReadPerMTok  float64 `toml:"cache_read_per_mtok"`
	CacheWritePerMTok float64 `toml:"cache_write_per_mtok"`
}

// LogSettings mirrors logging.Config's tunables in TOML form.
type LogSettings struct {
	Level      string `toml:"level"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   *bool  `toml:"compress"`

	// Debug forces logging on even without an explicit Dir. It does not
	// change the log level; Level does.
	Debug bool `toml:"debug"`

	// PprofEnabled starts logging's localhost:6060 pprof server. Off by
	// default; only worth enabling while chasing a specific performance
	// regression in the detector engine or a large batch run.
	PprofEnabled bool `toml:"pprof_enabled"`
}

// GetCompress returns whether rotated logs should be compressed,
// defaulting to true.
func (l LogSettings) GetCompress() bool {
	if l.Compress == nil {
		return true
	}
	return *l.Compress
}

// Default returns the zero-value Config with every documented default
// filled in, the value Load returns when no config file exists.
func Default() Config {
	return Config{
		DefaultFormat:      "table",
		DefaultOptimizeFor: "cost",
		Logs: LogSettings{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 10,
		},
	}
}

// Path returns the absolute path to config.toml under home.
func Path(home string) string {
	return filepath.Join(home, ConfigDirName, ConfigFileName)
}

// Load reads config.toml from $HOME/.agentaudit/config.toml, merging
// documented defaults onto whatever fields the file leaves unset. A
// missing file is not an error: Load returns Default(). A malformed file
// is reported as an error alongside Default(), so a caller can decide
// whether to proceed with defaults or abort.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	return LoadFrom(Path(home))
}

// LoadFrom reads config.toml from an explicit path, primarily for tests.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var onDisk Config
	if _, err := toml.DecodeFile(path, &onDisk); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	applyOverrides(&cfg, onDisk)
	return cfg, nil
}

// applyOverrides layers onDisk's explicitly-set fields onto defaults.
// Zero-value string/int fields are treated as "not set", matching the
// teacher's own config-merging convention in LoadUserConfig's Get*
// helpers.
func applyOverrides(cfg *Config, onDisk Config) {
	if onDisk.DefaultAgent != "" {
		cfg.DefaultAgent = onDisk.DefaultAgent
	}
	if onDisk.DefaultFormat != "" {
		cfg.DefaultFormat = onDisk.DefaultFormat
	}
	if onDisk.DefaultOptimizeFor != "" {
		cfg.DefaultOptimizeFor = onDisk.DefaultOptimizeFor
	}
	if onDisk.Theme != "" {
		cfg.Theme = onDisk.Theme
	}
	cfg.Pricing = onDisk.Pricing
	cfg.DiscoveryRoots = onDisk.DiscoveryRoots

	if onDisk.Logs.Level != "" {
		cfg.Logs.Level = onDisk.Logs.Level
	}
	if onDisk.Logs.Dir != "" {
		cfg.Logs.Dir = onDisk.Logs.Dir
	}
	if onDisk.Logs.MaxSizeMB > 0 {
		cfg.Logs.MaxSizeMB = onDisk.Logs.MaxSizeMB
	}
	if onDisk.Logs.MaxBackups > 0 {
		cfg.Logs.MaxBackups = onDisk.Logs.MaxBackups
	}
	if onDisk.Logs.MaxAgeDays > 0 {
		cfg.Logs.MaxAgeDays = onDisk.Logs.MaxAgeDays
	}
	if onDisk.Logs.Compress != nil {
		cfg.Logs.Compress = onDisk.Logs.Compress
	}
	if onDisk.Logs.Debug {
		cfg.Logs.Debug = true
	}
	if onDisk.Logs.PprofEnabled {
		cfg.Logs.PprofEnabled = true
	}
}

// PricingEntries converts the config's pricing overrides into
// pricing.Entry values ready for Catalog.Merge.
func (c Config) PricingEntries() []pricing.Entry {
	if len(c.Pricing) == 0 {
		return nil
	}
	out := make([]pricing.Entry, 0, len(c.Pricing))
	for _, p := range c.Pricing {
		out = append(out, pricing.Entry{
			ModelIDPattern:    p.ModelIDPattern,
			InputPerMTok:      p.InputPerMTok,
			OutputPerMTok:     p.OutputPerMTok,
			CacheReadPerMTok:  p.CacheReadPerMTok,
			CacheWritePerMTok: p.CacheWritePerMTok,
		})
	}
	return out
}

// DiscoveryRoot returns the user-configured root override for agent, if
// any was set in discovery_roots.
func (c Config) DiscoveryRoot(agent model.AgentKind) (string, bool) {
	if c.DiscoveryRoots == nil {
		return "", false
	}
	root, ok := c.DiscoveryRoots[string(agent)]
	return root, ok && root != ""
}
