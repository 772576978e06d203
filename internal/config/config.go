// Package config loads flexquery.yaml and applies FLEXQUERY_* environment
// overrides. Every setting a command needs is reachable without a config
// file: defaults plus environment are always enough.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized as overrides.
const (
	EnvToken     = "FLEXQUERY_TOKEN"
	EnvOutputDir = "FLEXQUERY_OUTPUT_DIR"
	EnvBaseURL   = "FLEXQUERY_BASE_URL"
	EnvLogLevel  = "FLEXQUERY_LOG_LEVEL"
	EnvStartDate = "FLEXQUERY_START_DATE"
	EnvEndDate   = "FLEXQUERY_END_DATE"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "flexquery.yaml"

// Config is the top-level flexquery.yaml configuration.
type Config struct {
	Token     string     `yaml:"token,omitempty"`
	OutputDir string     `yaml:"output_dir"`
	BaseURL   string     `yaml:"base_url,omitempty"`
	LogLevel  string     `yaml:"log_level"`
	Poll      PollConfig `yaml:"poll"`
}

// PollConfig bounds the readiness polling loop.
type PollConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	IntervalSeconds  int `yaml:"interval_seconds"`
	IncrementSeconds int `yaml:"increment_seconds"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		OutputDir: "reports",
		LogLevel:  "info",
		Poll: PollConfig{
			MaxAttempts:      7,
			IntervalSeconds:  5,
			IncrementSeconds: 10,
		},
	}
}

// Load reads a config file, falling back to defaults when the file does not
// exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; environment and defaults carry the config.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}
