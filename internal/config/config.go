// Package config loads and validates mdc's YAML configuration file (spec §6).
// Grounded on the teacher's config package idiom: a plain struct decoded via
// yaml.v3, with a Validate method invoked once at startup before anything
// else runs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// allowedDepths is the exchange's published set of valid limit-depth values
// for the snapshot REST endpoint (spec §4.3).
var allowedDepths = map[int]bool{
	5: true, 10: true, 20: true, 50: true, 100: true, 500: true, 1000: true, 5000: true,
}

// Config is the on-disk shape of mdc.yaml (spec §6, extended per SPEC_FULL
// with buffering and sink tuning fields).
type Config struct {
	BinanceRestEndpoint    string `yaml:"binance_rest_endpoint"`
	BinanceWssEndpoint     string `yaml:"binance_wss_endpoint"`
	Instrument             string `yaml:"instrument"`
	MaxDepth               int    `yaml:"max_depth"`
	Connections            int    `yaml:"connections"`
	ReconnectTimeoutMs     int    `yaml:"reconnect_timeout"`
	SnapshotUpdateIntervalMs int  `yaml:"snapshot_update_interval"`

	MaxBufferedDiffs  int    `yaml:"max_buffered_diffs"`
	ChannelBufferSize int    `yaml:"channel_buffer_size"`
	TopNLevels        int    `yaml:"top_n_levels"`
	LogLevel          string `yaml:"log_level"`
}

// FatalError marks a configuration problem that should terminate the
// process rather than be retried (spec §7's configuration-fatal class).
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal configuration error: %s", e.Reason)
}

// Load reads and parses the YAML file at path, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &FatalError{Reason: fmt.Sprintf("reading config file %q: %v", path, err)}
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, &FatalError{Reason: fmt.Sprintf("parsing config file %q: %v", path, err)}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxBufferedDiffs == 0 {
		c.MaxBufferedDiffs = 4096
	}
	if c.ChannelBufferSize == 0 {
		c.ChannelBufferSize = c.Connections * 64
	}
	if c.TopNLevels == 0 {
		c.TopNLevels = 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate enforces the invariants of spec §6/§9: a well-formed but
// semantically invalid config is a fatal condition, not a transient one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BinanceRestEndpoint) == "" {
		return &FatalError{Reason: "binance_rest_endpoint must not be empty"}
	}
	if strings.TrimSpace(c.BinanceWssEndpoint) == "" {
		return &FatalError{Reason: "binance_wss_endpoint must not be empty"}
	}
	if strings.TrimSpace(c.Instrument) == "" {
		return &FatalError{Reason: "instrument must not be empty"}
	}
	if c.Instrument != strings.ToUpper(c.Instrument) {
		return &FatalError{Reason: fmt.Sprintf("instrument %q must be upper-cased", c.Instrument)}
	}
	if c.MaxDepth > 5000 || !allowedDepths[c.MaxDepth] {
		return &FatalError{Reason: fmt.Sprintf("max_depth %d is not one of the exchange's accepted values", c.MaxDepth)}
	}
	// Per SPEC_FULL §9 OQ1: no invented upper bound on connections — only
	// the lower bound the spec itself requires is enforced.
	if c.Connections < 1 {
		return &FatalError{Reason: "connections must be >= 1"}
	}
	if c.ReconnectTimeoutMs <= 0 {
		return &FatalError{Reason: "reconnect_timeout must be a positive number of milliseconds"}
	}
	if c.SnapshotUpdateIntervalMs <= 0 {
		return &FatalError{Reason: "snapshot_update_interval must be a positive number of milliseconds"}
	}
	if c.MaxBufferedDiffs <= 0 {
		return &FatalError{Reason: "max_buffered_diffs must be positive"}
	}
	if c.ChannelBufferSize <= 0 {
		return &FatalError{Reason: "channel_buffer_size must be positive"}
	}
	if c.TopNLevels <= 0 {
		return &FatalError{Reason: "top_n_levels must be positive"}
	}
	return nil
}

// ReconnectTimeout returns the configured reconnect delay as a Duration.
func (c *Config) ReconnectTimeout() time.Duration {
	return time.Duration(c.ReconnectTimeoutMs) * time.Millisecond
}

// SnapshotUpdateInterval returns the configured snapshot poll interval as a
// Duration.
func (c *Config) SnapshotUpdateInterval() time.Duration {
	return time.Duration(c.SnapshotUpdateIntervalMs) * time.Millisecond
}
