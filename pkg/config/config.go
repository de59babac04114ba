// Package config loads the adapter service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blueline-project/blueline-go/pkg/adapter"
)

// Duration wraps time.Duration with YAML support for values like "5s" or
// "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// TimeoutConfig holds the guarded-step timeouts. Zero values fall back to
// the state machine defaults.
type TimeoutConfig struct {
	Start       Duration `yaml:"start"`
	Enable      Duration `yaml:"enable"`
	Disable     Duration `yaml:"disable"`
	Stop        Duration `yaml:"stop"`
	SetScanMode Duration `yaml:"set-scan-mode"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the console log level: debug, info, warn or error.
	Level string `yaml:"level"`

	// File, if set, receives the binary event log.
	File string `yaml:"file"`
}

// AdapterConfig holds adapter identity settings.
type AdapterConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`

	// BondedPeers are reconnected automatically after the adapter turns
	// on.
	BondedPeers []string `yaml:"bonded-peers"`
}

// SimConfig holds the simulated controller's behavior knobs.
type SimConfig struct {
	StartLatency   Duration `yaml:"start-latency"`
	EnableLatency  Duration `yaml:"enable-latency"`
	DisableLatency Duration `yaml:"disable-latency"`
}

// Config is the root service configuration.
type Config struct {
	Adapter  AdapterConfig `yaml:"adapter"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Log      LogConfig     `yaml:"log"`
	Sim      SimConfig     `yaml:"sim"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Adapter: AdapterConfig{
			Name:    "blueline",
			Address: "00:11:22:33:44:55",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and validates a YAML configuration file. Settings absent from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	for _, d := range []Duration{
		c.Timeouts.Start, c.Timeouts.Enable, c.Timeouts.Disable,
		c.Timeouts.Stop, c.Timeouts.SetScanMode,
		c.Sim.StartLatency, c.Sim.EnableLatency, c.Sim.DisableLatency,
	} {
		if d < 0 {
			return fmt.Errorf("negative duration in config")
		}
	}
	return nil
}

// MachineTimeouts converts the timeout section to the state machine's
// representation.
func (c *Config) MachineTimeouts() adapter.Timeouts {
	return adapter.Timeouts{
		Start:       time.Duration(c.Timeouts.Start),
		Enable:      time.Duration(c.Timeouts.Enable),
		Disable:     time.Duration(c.Timeouts.Disable),
		Stop:        time.Duration(c.Timeouts.Stop),
		SetScanMode: time.Duration(c.Timeouts.SetScanMode),
	}
}
