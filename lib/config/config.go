// Copyright 2026 The Quarry Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Quarry tools.
//
// Configuration is loaded from a single YAML file specified by the
// QUARRY_CONFIG environment variable or a --config flag. There is no
// automatic discovery; when no file is given the defaults apply. This
// keeps verification runs deterministic and auditable: the effective
// root directory and digest keys always come from exactly one place.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for Quarry verification tools.
type Config struct {
	// RootDir is the root-directory override. Filenames from
	// manifests are digested relative to this directory. "/" means
	// the real filesystem root.
	RootDir string `yaml:"rootdir"`

	// Manifest is the default manifest path used when a tool is not
	// given one explicitly.
	Manifest string `yaml:"manifest"`

	// Keys are the manifest keys whose records are verified, in
	// order.
	Keys []string `yaml:"keys"`

	// LogLevel sets the slog level: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration: the real filesystem root
// and the standard file groups.
func Default() *Config {
	return &Config{
		RootDir:  "/",
		Keys:     []string{"files", "conf_files"},
		LogLevel: "info",
	}
}

// Load reads configuration from path. An empty path falls back to the
// QUARRY_CONFIG environment variable; when that is also empty the
// defaults are returned. Fields absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("QUARRY_CONFIG")
	}

	configuration := Default()
	if path == "" {
		return configuration, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if configuration.RootDir == "" {
		configuration.RootDir = "/"
	}
	if len(configuration.Keys) == 0 {
		configuration.Keys = Default().Keys
	}

	return configuration, nil
}
