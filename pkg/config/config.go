/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the maplink configuration
type Config struct {
	BinaryExtension string  `yaml:"binary_extension"`
	TextExtension   string  `yaml:"text_extension"`
	Verify          bool    `yaml:"verify"`
	Logging         Logging `yaml:"logging"`
	Metrics         Metrics `yaml:"metrics"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// Metrics contains metrics export configuration
type Metrics struct {
	// Textfile is a node_exporter textfile path; empty disables the export
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		BinaryExtension: ".bin",
		TextExtension:   ".yaml",
		Verify:          true,
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	for name, ext := range map[string]string{
		"binary_extension": c.BinaryExtension,
		"text_extension":   c.TextExtension,
	} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%s must start with a dot: %q", name, ext)
		}
	}
	if strings.EqualFold(c.BinaryExtension, c.TextExtension) {
		return fmt.Errorf("binary_extension and text_extension must differ: %q", c.BinaryExtension)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured logging level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("invalid logging level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./maplink.yaml"
	}

	// For Linux/macOS, use ~/.config/maplink/config.yaml
	configDir := filepath.Join(homeDir, ".config", "maplink")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// Resolve loads configPath when given, otherwise the default path when that
// file exists, otherwise the defaults.
func Resolve(configPath string) (*Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}
	if path := GetDefaultConfigPath(); ConfigExists(path) {
		return LoadConfig(path)
	}
	return DefaultConfig(), nil
}
