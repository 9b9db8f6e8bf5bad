package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"gowedge/eventpipe"
	"gowedge/indicator"
	"gowedge/mqtt"
	"gowedge/reader"
	"gowedge/scanbuf"
	"gowedge/trigger"
)

// Config is the main configuration structure for gowedge.
type Config struct {
	// Node name used in MQTT topics and client id
	ClientID string `yaml:"client_id"`

	// Barcode detection settings
	Scanner ScannerConfig `yaml:"scanner"`

	// Key sources, one target each
	Sources []reader.Config `yaml:"sources"`

	// MQTT connection settings
	MQTT mqtt.Config `yaml:"mqtt"`

	// Indicator configuration
	Indicator indicator.Config `yaml:"indicator"`

	// Named pipe for injected codes
	EventPipe eventpipe.Config `yaml:"event_pipe"`

	// Flush button
	Trigger trigger.Config `yaml:"trigger"`

	// Publish every key code, not just barcodes
	PublishData bool `yaml:"publish_data"`
}

// ScannerConfig holds the barcode detection settings.
type ScannerConfig struct {
	TimeoutMillis int                  `yaml:"timeout_ms"`
	Debug         bool                 `yaml:"debug"`
	Data          string               `yaml:"data"` // e.g. "56,56,55,48,13"
	Rules         []scanbuf.RuleConfig `yaml:"rules"`
}

// Timeout returns the idle timeout, zero meaning the scanner default.
func (sc ScannerConfig) Timeout() time.Duration {
	return time.Duration(sc.TimeoutMillis) * time.Millisecond
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("client_id missing in config file")
	}
	if c.Scanner.TimeoutMillis < 0 {
		return fmt.Errorf("scanner.timeout_ms must not be negative")
	}
	if _, err := scanbuf.CompileRules(c.Scanner.Rules); err != nil {
		return fmt.Errorf("scanner.rules: %w", err)
	}

	seen := make(map[string]bool)
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name missing", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		seen[src.Name] = true
	}
	if c.Trigger.Pin != 0 && c.Trigger.Target == "" {
		return errors.New("trigger.target missing")
	}
	return nil
}
