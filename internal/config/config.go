// Package config loads and validates the netfold configuration file.
// Defaults apply field by field, so a partial file only overrides what it
// names.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netfold/netfold/internal/errors"
	"github.com/netfold/netfold/internal/logging"
)

// Config represents the complete application configuration.
type Config struct {
	// Aggregation configuration
	Aggregation AggregationConfig `yaml:"aggregation" json:"aggregation"`

	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AggregationConfig holds aggregation engine settings.
type AggregationConfig struct {
	// Horizontal search-window bound.
	PermissivePrefix int `yaml:"permissive_prefix" json:"permissive_prefix" validate:"min=1,max=32"`

	// Vertical search-window bound.
	SwapPrefix int `yaml:"swap_prefix" json:"swap_prefix" validate:"min=1,max=31"`

	// Comma-separated pass/strategy flags: horizontal, vertical, max.
	Modes string `yaml:"modes" json:"modes"`
}

// ScanningConfig holds scanning-related settings.
type ScanningConfig struct {
	// Number of concurrent target scans.
	Workers int `yaml:"workers" json:"workers" validate:"min=1,max=256"`

	// Default port specification.
	DefaultPorts string `yaml:"default_ports" json:"default_ports" validate:"required"`

	// Default scan type: connect, udp or version.
	DefaultScanType string `yaml:"default_scan_type" json:"default_scan_type" validate:"oneof=connect udp version"`

	// Scan timeout in seconds (0 = unbounded).
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec" validate:"min=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
	Output string `yaml:"output" json:"output" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Aggregation: AggregationConfig{
			PermissivePrefix: 1,
			SwapPrefix:       1,
			Modes:            "horizontal,max",
		},
		Scanning: ScanningConfig{
			Workers:         2,
			DefaultPorts:    "1-99",
			DefaultScanType: "connect",
			TimeoutSec:      0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the configuration file at path, applies it over the
// defaults and validates the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapConfigError(errors.CodeFileNotFound,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			"failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			"failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section against its declared constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.ErrConfigRange(fe.Namespace(), fe.Value(),
				fmt.Sprintf("failed %q constraint", fe.Tag()))
		}
		return errors.WrapConfigError(errors.CodeConfiguration, "invalid configuration", err)
	}
	return nil
}

// LoggingSettings converts the logging section into the logging package's
// configuration.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == "debug",
	}
}
