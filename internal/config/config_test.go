package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/otus-dissect/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
otus-dissect:
  log:
    level: debug
    format: json
    outputs:
      file:
        enabled: true
        path: /tmp/otus-dissect.log
  dissect:
    families: [ndp, DNSRDATA]
    dns_ports: [53, 5353]
    max_frames: 100
    reassembly_timeout: 10s
  output:
    format: yaml
  metrics:
    enabled: true
    listen: 127.0.0.1:9091
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := GlobalConfig{
		Log: LogConfig{
			Level:      "debug",
			Format:     "json",
			Pattern:    "%time [%level] %msg %field",
			TimeFormat: "2006-01-02 15:04:05.000",
			Outputs: LogOutputsConfig{File: FileOutputConfig{
				Enabled: true,
				Path:    "/tmp/otus-dissect.log",
				Rotation: RotationConfig{
					MaxSizeMB:  100,
					MaxAgeDays: 30,
					MaxBackups: 5,
					Compress:   true,
				},
			}},
		},
		Dissect: DissectConfig{
			Families:  []string{"ndp", "dnsrdata"},
			DNSPorts:  []uint16{53, 5353},
			SSHPorts:  []uint16{22},
			MaxFrames: 100,
			Prefilter: true,

			Reassemble:        true,
			ReassemblyTimeout: 10 * time.Second,
		},
		Output:  OutputConfig{Format: "yaml"},
		Metrics: MetricsConfig{Enabled: true, Listen: "127.0.0.1:9091", Path: "/metrics"},
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, cfg.Dissect.Enabled(core.FamilyNDP))
	assert.False(t, cfg.Dissect.Enabled(core.FamilySSH2))
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, []uint16{53}, cfg.Dissect.DNSPorts)
	assert.Equal(t, []uint16{22}, cfg.Dissect.SSHPorts)
	for _, f := range core.Families {
		assert.True(t, cfg.Dissect.Enabled(f), f)
	}
	assert.True(t, cfg.Dissect.Prefilter)
	assert.True(t, cfg.Dissect.Reassemble)
	assert.Equal(t, 30*time.Second, cfg.Dissect.ReassemblyTimeout)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("OTUS_DISSECT_LOG_LEVEL", "warn")
	t.Setenv("OTUS_DISSECT_OUTPUT_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"log level", "otus-dissect:\n  log:\n    level: verbose\n", "invalid log level"},
		{"log format", "otus-dissect:\n  log:\n    format: xml\n", "invalid log format"},
		{"family", "otus-dissect:\n  dissect:\n    families: [tcpopt]\n", "tcpopt"},
		{"no family", "otus-dissect:\n  dissect:\n    families: []\n", "at least one family"},
		{"output", "otus-dissect:\n  output:\n    format: xml\n", "invalid output format"},
		{"max frames", "otus-dissect:\n  dissect:\n    max_frames: -1\n", "max_frames"},
		{"reassembly timeout", "otus-dissect:\n  dissect:\n    reassembly_timeout: 0s\n", "reassembly_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfigInvalid))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
