package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "plutus.yaml"

// Config represents the top-level plutus.yaml configuration.
type Config struct {
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`
}

// SourceConfig holds per statement-source settings, keyed by source format.
type SourceConfig struct {
	Accounts `yaml:",inline"`
	// Rules is a path to a lookup dataset replacing the bundled one.
	Rules string `yaml:"rules,omitempty" env:"RULES"`
}

// Accounts names the default ledger accounts of a statement source. Empty
// fields fall through to the next layer.
type Accounts struct {
	Asset     string `yaml:"asset_account,omitempty" env:"ASSET_ACCOUNT"`
	Liability string `yaml:"liability_account,omitempty" env:"LIABILITY_ACCOUNT"`
	Points    string `yaml:"points_account,omitempty" env:"POINTS_ACCOUNT"`
	Unknown   string `yaml:"unknown_account,omitempty" env:"UNKNOWN_ACCOUNT"`
}

// Source returns the settings for format, or the zero value.
func (c *Config) Source(format string) SourceConfig {
	if c == nil || c.Sources == nil {
		return SourceConfig{}
	}
	return c.Sources[format]
}

// Load reads a plutus.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadOptional is like Load but returns an empty Config when path does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
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
