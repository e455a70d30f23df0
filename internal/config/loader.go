package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load assembles the process-wide configuration from, in increasing order
// of precedence: built-in defaults, an optional YAML profile file, and
// environment variables. profilePath may be empty, in which case only
// defaults and the environment apply.
func Load(profilePath string) (*Config, error) {
	cfg := Default()

	if profilePath != "" {
		if err := mergeProfile(cfg, profilePath); err != nil {
			return nil, fmt.Errorf("loading profile %s: %w", profilePath, err)
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// mergeProfile decodes a YAML profile file over the already-populated
// defaults. Fields absent from the file keep their default value, since
// yaml.Unmarshal only overwrites fields present in the document.
func mergeProfile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("profile file does not exist: %w", err)
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}
