// Package config loads the application configuration: YAML file if
// present, environment overrides on top, usable defaults underneath.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
)

// Environment variable names.
const (
	EnvConfigPath = "QIRAAT_CONFIG"
	EnvDBPath     = "QIRAAT_DB"
	EnvCatalog    = "QIRAAT_CATALOG"
	EnvBaseline   = "QIRAAT_BASELINE"
	EnvWorkers    = "QIRAAT_WORKERS"
	EnvLogLevel   = "QIRAAT_LOG_LEVEL"
	EnvLogFormat  = "QIRAAT_LOG_FORMAT"
)

// Config holds the settings shared across the application. The engine
// packages take these as plain arguments; only the surrounding tooling
// reads configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Coverage CoverageConfig `yaml:"coverage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig selects the lineage catalog and the baseline lineage.
type CatalogConfig struct {
	// Path is an optional YAML catalog override; empty selects the
	// built-in twenty-lineage catalog.
	Path string `yaml:"path"`

	// Baseline is the reference lineage code.
	Baseline string `yaml:"baseline"`
}

// PipelineConfig tunes the difference run.
type PipelineConfig struct {
	// Workers caps concurrent verse jobs; 0 means one per processor.
	Workers int `yaml:"workers"`
}

// CoverageConfig tunes the auditor.
type CoverageConfig struct {
	Band qiraat.Band `yaml:"band"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the zero-configuration settings.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "qiraat.db"},
		Catalog:  CatalogConfig{Baseline: qiraat.DefaultBaseline},
		Coverage: CoverageConfig{Band: qiraat.DefaultBand},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path (or $QIRAAT_CONFIG, or nothing) and
// applies environment overrides. A missing explicit path is an error;
// a missing environment-selected path falls back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv(EnvBaseline); v != "" {
		c.Catalog.Baseline = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a number: %w", EnvWorkers, v, err)
		}
		c.Pipeline.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	return nil
}

// LoadCatalog resolves the configured lineage catalog.
func (c *Config) LoadCatalog() (*qiraat.Catalog, error) {
	if c.Catalog.Path == "" {
		return qiraat.DefaultCatalog(), nil
	}
	return qiraat.LoadCatalog(c.Catalog.Path)
}
