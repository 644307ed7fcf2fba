package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "bookstore.yml"
	defaultDBPath     = "data/bookstore.json"
	defaultCurrency   = "USD"
)

// Config holds the CLI's file-based settings. Flags override the file, the
// file overrides the defaults.
type Config struct {
	DBPath   string `yaml:"db_path"`
	Currency string `yaml:"currency"`
}

// loadConfig reads the YAML config at path. An empty path falls back to
// bookstore.yml in the working directory, which is optional; an explicitly
// given path must exist.
func loadConfig(path string) (Config, error) {
	cfg := Config{DBPath: defaultDBPath, Currency: defaultCurrency}

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return cfg, nil
		}
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	return cfg, nil
}
