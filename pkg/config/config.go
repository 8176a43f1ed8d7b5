/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/blockfile/pkg/block"
)

// Config represents the blockfile configuration
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Generator Generator `yaml:"generator"`
	Catalog   Catalog   `yaml:"catalog"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// Storage describes how records are laid out on disk
type Storage struct {
	BlockSize int        `yaml:"block_size"`
	Layout    block.Mode `yaml:"layout"`
	Output    string     `yaml:"output"`
}

// Generator contains synthetic data settings
type Generator struct {
	Records int   `yaml:"records"`
	Seed    int64 `yaml:"seed"`
}

// Catalog contains run history settings
type Catalog struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Server contains HTTP API settings
type Server struct {
	Port       int    `yaml:"port"`
	Bind       string `yaml:"bind"`
	APIKey     string `yaml:"api_key,omitempty"` // empty leaves the API open
	MaxRecords int    `yaml:"max_records"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: Storage{
			BlockSize: 512,
			Layout:    block.VariableSpanned,
			Output:    "alunos.dat",
		},
		Generator: Generator{
			Records: 100,
			Seed:    0,
		},
		Catalog: Catalog{
			Enabled: true,
			Dir:     "./data/catalog",
		},
		Server: Server{
			Port:       8080,
			Bind:       "127.0.0.1",
			MaxRecords: 100000,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks values that would make a packing run fail
func (c *Config) Validate() error {
	if c.Storage.BlockSize <= 0 {
		return &block.ConfigError{Field: "block_size", Value: c.Storage.BlockSize, Reason: "must be positive"}
	}
	if !c.Storage.Layout.Valid() {
		return &block.ConfigError{Field: "layout", Value: int(c.Storage.Layout), Reason: "unknown packing mode"}
	}
	if c.Server.MaxRecords <= 0 {
		return fmt.Errorf("server.max_records must be positive: %d", c.Server.MaxRecords)
	}
	if c.Generator.Records < 0 {
		return fmt.Errorf("generator.records must not be negative: %d", c.Generator.Records)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", c.Logging.Format)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Missing keys keep
// their default values.
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
		return "./blockfile.yaml"
	}

	// For Linux/macOS, use ~/.config/blockfile/config.yaml
	configDir := filepath.Join(homeDir, ".config", "blockfile")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
