// Package config loads tilegen settings from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/tilegen/internal/engine"
)

// maxRecentLayouts caps Config.RecentLayouts.
const maxRecentLayouts = 10

// Config holds all tilegen settings.
type Config struct {
	Logging LoggingConfig   `yaml:"logging"`
	Compile engine.Settings `yaml:"compile"`
	Catalog CatalogConfig   `yaml:"catalog"`
	Export  ExportConfig    `yaml:"export"`
	// RecentLayouts lists layout files compiled most recently first.
	RecentLayouts []string `yaml:"recent_layouts"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// CatalogConfig selects the texture catalog. An empty path uses the
// built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig holds output paths; empty paths are skipped.
type ExportConfig struct {
	PDF    string `yaml:"pdf"`
	Labels string `yaml:"labels"`
	DXF    string `yaml:"dxf"`
	XLSX   string `yaml:"xlsx"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Compile:       engine.DefaultSettings(),
		RecentLayouts: []string{},
	}
}

// DefaultConfigDir returns the default directory for tilegen configuration.
// On all platforms this is ~/.tilegen/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tilegen")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load reads a config file over the defaults. If the file does not exist,
// it returns Default with no error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.RecentLayouts == nil {
		cfg.RecentLayouts = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if c.Compile.Seed == "" {
		return fmt.Errorf("compile seed must not be empty")
	}
	return nil
}

// SaveTo writes the config to a specific path.
// It creates any missing parent directories automatically.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AddRecentLayout moves path to the front of RecentLayouts.
func (c *Config) AddRecentLayout(path string) {
	recent := []string{path}
	for _, p := range c.RecentLayouts {
		if p != path && len(recent) < maxRecentLayouts {
			recent = append(recent, p)
		}
	}
	c.RecentLayouts = recent
}
