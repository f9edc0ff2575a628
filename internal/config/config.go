// Package config loads fwconvert's optional --config YAML file: default
// vendor pair, interface/zone mapping tables, and logging preferences.
// Grounded on the newtron CLI's settings-file loading in cmd/newtron.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the top-level --config file shape.
type Settings struct {
	DefaultSource string            `yaml:"default_source"`
	DefaultTarget string            `yaml:"default_target"`
	LogLevel      string            `yaml:"log_level"`
	JSONLogs      bool              `yaml:"json_logs"`
	Interfaces    map[string]string `yaml:"interfaces"`
	Zones         map[string]string `yaml:"zones"`
}

// Load reads and parses the YAML settings file at path. A missing path
// is not an error — callers get zero-value Settings and fall back to
// flags/defaults, matching the CLI's "config file is optional" contract.
func Load(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return s, nil
}
