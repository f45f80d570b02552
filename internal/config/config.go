// Package config holds the assistant configuration and per-session state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the user-adjustable configuration, loaded from an optional YAML
// file.
type Config struct {
	// Endpoint is the base URL of the remote AI service.
	Endpoint string `yaml:"endpoint"`

	// TryAutoReconnection bounds the automatic reconnection attempts after
	// a rate-limited health check. Zero disables the retry chain.
	TryAutoReconnection int `yaml:"tryAutoReconnection"`

	// ClearBeforeExplain asks the explain and typify handlers to clear the
	// chat before narrating a new result.
	ClearBeforeExplain bool `yaml:"clearBeforeExplain"`

	// ManualURL is the location of the full documentation.
	ManualURL string `yaml:"manualUrl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:            "http://localhost:8080",
		TryAutoReconnection: 3,
		ManualURL:           "https://github.com/brodao2/tds-gaia/wiki",
	}
}

// Load reads the configuration file at path. A missing file is not an
// error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
