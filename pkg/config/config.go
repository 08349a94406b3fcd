// Package config loads YAML configuration files with environment variable
// expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator reports whether a decoded configuration is usable.
type Validator interface {
	Validate() error
}

// Load reads filename, expands ${VAR} references against the process
// environment, decodes the YAML into target, and runs the target's Validate
// method when it implements Validator.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validate %s: %w", filename, err)
		}
	}
	return nil
}

// LoadOrDefault behaves like Load but falls back to fallback when filename
// does not exist. An empty fallback makes a missing filename an error.
func LoadOrDefault[T any](filename, fallback string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if fallback == "" {
			return fmt.Errorf("config: file not found: %s", filename)
		}
		return Load(fallback, target)
	}
	return Load(filename, target)
}
