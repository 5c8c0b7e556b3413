package nfcb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative_min", func(c *Config) { c.MinimumModulationThreshold = -0.1 }, true},
		{"min_equals_max", func(c *Config) { c.MaximumModulationThreshold = c.MinimumModulationThreshold }, true},
		{"max_above_one", func(c *Config) { c.MaximumModulationThreshold = 1.5 }, true},
		{"zero_max_frame_size", func(c *Config) { c.MaxFrameSize = 0 }, true},
		{"non_power_of_two_buffer", func(c *Config) { c.SignalBufferLength = 100 }, true},
		{"zero_buffer_length", func(c *Config) { c.SignalBufferLength = 0 }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_ReadsYAMLAndAppliesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nfcb.yaml")
	contents := "minimum_modulation_threshold: 0.15\nmaximum_modulation_threshold: 0.45\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.15, cfg.MinimumModulationThreshold)
	assert.Equal(t, 0.45, cfg.MaximumModulationThreshold)
	assert.Equal(t, 256, cfg.MaxFrameSize)         // defaulted, not present in the file
	assert.Equal(t, 1<<16, cfg.SignalBufferLength) // defaulted, not present in the file
}

func TestLoadConfig_ErrorsOnMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_ErrorsOnInvalidResult(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nfcb.yaml")
	contents := "minimum_modulation_threshold: 0.9\nmaximum_modulation_threshold: 0.2\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
