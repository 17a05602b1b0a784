package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the configuration file
const (
	EnvConfig    = "PARGO_CONFIG"
	EnvCargo     = "PARGO_CARGO"
	EnvLogLevel  = "PARGO_LOG_LEVEL"
	EnvLogFormat = "PARGO_LOG_FORMAT"
	EnvDryRun    = "PARGO_DRY_RUN"

	// cargo exports the path of itself to subcommands it runs
	envCargoSelf = "CARGO"
)

// Config represents the cargo-pargo tool configuration. It is independent of
// any project; per-project settings live in Pargo.toml.
type Config struct {
	Cargo  CargoConfig `yaml:"cargo"`
	Log    LogConfig   `yaml:"log"`
	DryRun bool        `yaml:"dry_run"`
}

// CargoConfig configures the wrapped build tool
type CargoConfig struct {
	Binary string `yaml:"binary"`
}

// LogConfig configures diagnostics on stderr
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns $PARGO_CONFIG, or $HOME/.config/pargo/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pargo", "config.yaml"), nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOptional loads path if it exists and falls back to defaults otherwise.
// Environment overrides apply in both cases.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg = &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv() {
	c.Cargo.Binary = os.ExpandEnv(c.Cargo.Binary)
}

// applyEnv lets environment variables override file values
func (c *Config) applyEnv() {
	if c.Cargo.Binary == "" {
		c.Cargo.Binary = os.Getenv(envCargoSelf)
	}
	if v := os.Getenv(EnvCargo); v != "" {
		c.Cargo.Binary = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	switch os.Getenv(EnvDryRun) {
	case "1", "true":
		c.DryRun = true
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Cargo.Binary == "" {
		c.Cargo.Binary = "cargo"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Cargo.Binary == "" {
		return fmt.Errorf("cargo.binary is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("invalid log.format: %s (must be text or json)", c.Log.Format)
	}

	return nil
}
