package nfcb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable parameters of the decoder: the two modulation
// thresholds, the host ring buffer's default length, the frame size cap,
// and whether to register Prometheus collectors.
type Config struct {
	MinimumModulationThreshold float64 `yaml:"minimum_modulation_threshold"`
	MaximumModulationThreshold float64 `yaml:"maximum_modulation_threshold"`
	SignalBufferLength         int     `yaml:"signal_buffer_length"`
	MaxFrameSize               int     `yaml:"max_frame_size"`
	EnableMetrics              bool    `yaml:"enable_metrics"`
}

// DefaultConfig returns reasonable threshold, buffer-length, and frame-size
// defaults.
func DefaultConfig() Config {
	return Config{
		MinimumModulationThreshold: 0.10,
		MaximumModulationThreshold: 0.50,
		SignalBufferLength:         1 << 16,
		MaxFrameSize:               256,
		EnableMetrics:              false,
	}
}

// LoadConfig reads a YAML config file, applying DefaultConfig for any field
// left at its zero value, then validates the result.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("read nfcb config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse nfcb config file: %w", err)
	}

	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = 256
	}
	if cfg.SignalBufferLength == 0 {
		cfg.SignalBufferLength = 1 << 16
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether cfg's fields are usable: the modulation
// thresholds must be ordered and bounded, the signal buffer length must be
// a power of two (the ring indexing relies on masking rather than modulo),
// and the frame size cap must be positive.
func (c Config) Validate() error {
	if c.MinimumModulationThreshold < 0 || c.MinimumModulationThreshold >= 1 {
		return fmt.Errorf("minimum_modulation_threshold must be in [0, 1)")
	}
	if c.MaximumModulationThreshold <= c.MinimumModulationThreshold || c.MaximumModulationThreshold > 1 {
		return fmt.Errorf("maximum_modulation_threshold must be greater than minimum and at most 1")
	}
	if c.SignalBufferLength <= 0 || c.SignalBufferLength&(c.SignalBufferLength-1) != 0 {
		return fmt.Errorf("signal_buffer_length must be a power of two")
	}
	if c.MaxFrameSize < 1 {
		return fmt.Errorf("max_frame_size must be at least 1")
	}
	return nil
}
