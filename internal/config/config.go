package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all unbundle configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Bundle parsing
	Parse ParseConfig `yaml:"parse"`

	// Module body regeneration
	Generate GenerateConfig `yaml:"generate"`

	// Module recognition
	Extract ExtractConfig `yaml:"extract"`

	// Output directory and files
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "unbundle",
		Version: "0.3.0",

		Parse:    DefaultParseConfig(),
		Generate: DefaultGenerateConfig(),
		Extract:  ExtractConfig{},
		Output:   DefaultOutputConfig(),

		// Run progress goes to stdout; logs stay quiet unless asked for.
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("UNBUNDLE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("UNBUNDLE_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if dir := os.Getenv("UNBUNDLE_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if ext := os.Getenv("UNBUNDLE_EXTENSION"); ext != "" {
		c.Output.Extension = ext
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if c.Parse.MaxFileSize < 0 {
		return fmt.Errorf("parse.max_file_size: must not be negative, got %d", c.Parse.MaxFileSize)
	}
	if err := c.Output.validate(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); c.Watch.Debounce != "" && err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}
	return nil
}

// GetWatchDebounce returns the watch debounce window as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}
