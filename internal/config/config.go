// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/otus-dissect/internal/core"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `otus-dissect:` root key in YAML.
type GlobalConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Dissect DissectConfig `mapstructure:"dissect"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─── Dissect ───

// DissectConfig selects which unit families are dissected and where they
// are looked for.
type DissectConfig struct {
	Families  []string `mapstructure:"families"`   // ndp / ipv4opt / dnsrdata / ssh2
	DNSPorts  []uint16 `mapstructure:"dns_ports"`  // UDP and TCP
	SSHPorts  []uint16 `mapstructure:"ssh_ports"`  // TCP
	MaxFrames int      `mapstructure:"max_frames"` // 0 = unlimited
	Prefilter bool     `mapstructure:"prefilter"`  // Drop frames that cannot carry units before decoding

	Reassemble        bool          `mapstructure:"reassemble"`         // IPv4 fragments
	ReassemblyTimeout time.Duration `mapstructure:"reassembly_timeout"` // Capture time
}

// Enabled reports whether family f is selected.
func (c DissectConfig) Enabled(f core.Family) bool {
	return slices.Contains(c.Families, string(f))
}

// ─── Output ───

// OutputConfig controls how records are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text / json / yaml
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"` // Empty = collect without serving
	Path    string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug / info / warn / error
	Format string `mapstructure:"format"` // json / text / pattern
	// Pattern and TimeFormat apply to the pattern format. Pattern
	// substitutes %time, %level, %msg and %field.
	Pattern    string           `mapstructure:"pattern"`
	TimeFormat string           `mapstructure:"time_format"`
	Outputs    LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`  // MB
	MaxAgeDays int  `mapstructure:"max_age_days"` // Days
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Loading ───

const rootKey = "otus-dissect"

// configRoot is the top-level wrapper matching the YAML structure `otus-dissect: ...`.
type configRoot struct {
	OtusDissect GlobalConfig `mapstructure:"otus-dissect"`
}

// Load loads configuration from file. An empty path loads defaults and
// environment overrides only.
// Env vars use the OTUS_DISSECT_ prefix (e.g., OTUS_DISSECT_LOG_LEVEL).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Key "otus-dissect.log.level" maps to env "OTUS_DISSECT_LOG_LEVEL".
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.OtusDissect

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "otus-dissect." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	key := func(k string) string { return rootKey + "." + k }

	// Log defaults
	v.SetDefault(key("log.level"), "info")
	v.SetDefault(key("log.format"), "text")
	v.SetDefault(key("log.pattern"), "%time [%level] %msg %field")
	v.SetDefault(key("log.time_format"), "2006-01-02 15:04:05.000")
	v.SetDefault(key("log.outputs.file.enabled"), false)
	v.SetDefault(key("log.outputs.file.path"), "/var/log/otus-dissect/otus-dissect.log")
	v.SetDefault(key("log.outputs.file.rotation.max_size_mb"), 100)
	v.SetDefault(key("log.outputs.file.rotation.max_age_days"), 30)
	v.SetDefault(key("log.outputs.file.rotation.max_backups"), 5)
	v.SetDefault(key("log.outputs.file.rotation.compress"), true)

	// Dissect defaults
	families := make([]string, len(core.Families))
	for i, f := range core.Families {
		families[i] = string(f)
	}
	v.SetDefault(key("dissect.families"), families)
	v.SetDefault(key("dissect.dns_ports"), []uint16{53})
	v.SetDefault(key("dissect.ssh_ports"), []uint16{22})
	v.SetDefault(key("dissect.max_frames"), 0)
	v.SetDefault(key("dissect.prefilter"), true)
	v.SetDefault(key("dissect.reassemble"), true)
	v.SetDefault(key("dissect.reassembly_timeout"), "30s")

	// Output defaults
	v.SetDefault(key("output.format"), "text")

	// Metrics defaults
	v.SetDefault(key("metrics.enabled"), false)
	v.SetDefault(key("metrics.listen"), "")
	v.SetDefault(key("metrics.path"), "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: invalid log level: %s (must be debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text", "pattern":
	default:
		return fmt.Errorf("%w: invalid log format: %s (must be json/text/pattern)", core.ErrConfigInvalid, cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("%w: log.outputs.file.path is required when file output is enabled", core.ErrConfigInvalid)
	}

	// ── Dissect validation ──
	if len(cfg.Dissect.Families) == 0 {
		return fmt.Errorf("%w: dissect.families must name at least one family", core.ErrConfigInvalid)
	}
	for i, name := range cfg.Dissect.Families {
		f, err := core.ParseFamily(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return fmt.Errorf("%w: dissect.families: %w", core.ErrConfigInvalid, err)
		}
		cfg.Dissect.Families[i] = string(f)
	}
	cfg.Dissect.Families = slices.Compact(cfg.Dissect.Families)
	if cfg.Dissect.MaxFrames < 0 {
		return fmt.Errorf("%w: dissect.max_frames must not be negative", core.ErrConfigInvalid)
	}
	if cfg.Dissect.Reassemble && cfg.Dissect.ReassemblyTimeout <= 0 {
		return fmt.Errorf("%w: dissect.reassembly_timeout must be positive", core.ErrConfigInvalid)
	}

	// ── Output validation ──
	switch cfg.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: invalid output format: %s (must be text/json/yaml)", core.ErrConfigInvalid, cfg.Output.Format)
	}

	// ── Metrics defaults ──
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	return nil
}
