// Package config loads pipeline configuration from environment variables
// (ISIDORA_ prefix) merged over an optional YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Registry RegistryConfig `yaml:"registry" envconfig:"REGISTRY"`
	Sheets   SheetsConfig   `yaml:"sheets" envconfig:"SHEETS"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// RegistryConfig configures the external entity-registry lookup. An empty
// DSN disables the registry; the resolver then runs name-only.
type RegistryConfig struct {
	DSN     string        `yaml:"dsn" envconfig:"DSN"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// SheetsConfig maps sheet roles to the expected sheet names of the export
// format. Trailing-whitespace variants are tolerated at the workbook layer.
type SheetsConfig struct {
	Transactions string `yaml:"transactions" envconfig:"TRANSACTIONS"`
	Reporters    string `yaml:"reporters" envconfig:"REPORTERS"`
	Instruments  string `yaml:"instruments" envconfig:"INSTRUMENTS"`
}

// OutputConfig contains export destination configuration
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// Default returns the built-in configuration: console logging at info
// level, the export format's standard sheet names, no registry.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/isidora.log",
		},
		Registry: RegistryConfig{
			Timeout: 10 * time.Second,
		},
		Sheets: SheetsConfig{
			Transactions: "Примени податоци",
			Reporters:    "листа известувачи",
			Instruments:  "Вид на х.в.",
		},
		Output: OutputConfig{
			Dir: "out",
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, then an
// optional YAML file, then ISIDORA_-prefixed environment variables. Each
// layer only overrides what it actually sets.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("ISIDORA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Sheets.Transactions == "" {
		return fmt.Errorf("transactions sheet name must not be empty")
	}
	if c.Sheets.Reporters == "" {
		return fmt.Errorf("reporters sheet name must not be empty")
	}
	if c.Registry.Timeout < 0 {
		return fmt.Errorf("registry timeout must not be negative")
	}
	return nil
}

// RegistryEnabled reports whether a registry DSN is configured.
func (c *Config) RegistryEnabled() bool {
	return c.Registry.DSN != ""
}
