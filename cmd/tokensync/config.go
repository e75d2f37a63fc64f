package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds the contents of .tokensync/config.yaml.
type ProjectConfig struct {
	Version   string   `yaml:"version"`
	ProjectID string   `yaml:"project_id"`
	Database  string   `yaml:"database"`
	Excludes  []string `yaml:"excludes"`
	Workers   int      `yaml:"workers"`
}

// loadProjectConfig reads .tokensync/config.yaml from the project root.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(root + "/.tokensync/config.yaml")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveProjectID applies the fallback chain:
//  1. Explicit --project flag value
//  2. project_id from .tokensync/config.yaml
//  3. Default: "default"
func resolveProjectID(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.ProjectID != "" {
		return cfg.ProjectID
	}
	return "default"
}

// resolveDatabase applies the same chain for the registry database path.
func resolveDatabase(flagValue string, cfg *ProjectConfig, root string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Database != "" {
		return cfg.Database
	}
	return root + "/.tokensync/registry.db"
}
