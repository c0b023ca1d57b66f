package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted after the YAML file. They are read once
// at load time and take precedence over file values.
const (
	EnvSpreadsheetID   = "SPREADSHEET_ID"
	EnvCredentialsFile = "GOOGLE_CREDENTIALS_FILE"
	EnvLogLevel        = "LOG_LEVEL"
)

// Load reads a YAML config file, expanding ${VAR} environment references.
// A missing file is not an error: the spreadsheet id and credentials may be
// supplied entirely through the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env-only operation
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvSpreadsheetID); v != "" {
		c.Spreadsheet.ID = v
	}
	if v := os.Getenv(EnvCredentialsFile); v != "" {
		c.Spreadsheet.CredentialsFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
