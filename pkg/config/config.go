// Package config loads YAML configuration files into typed structs.
//
// Values may reference environment variables as ${NAME} or
// ${NAME:-fallback}; they are expanded before the YAML is decoded.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves
// after loading.
type Validator interface {
	Validate() error
}

// Load decodes filename over target. Fields absent from the file keep
// their current values, so target should hold the defaults.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := Decode(data, target); err != nil {
		return fmt.Errorf("config file %s: %w", filename, err)
	}
	return nil
}

// LoadWithDefaults is Load, except that a missing file is not an error:
// target keeps its defaults and is still validated.
func LoadWithDefaults[T any](filename string, target *T) error {
	err := Load(filename, target)
	if errors.Is(err, os.ErrNotExist) {
		return validate(target)
	}
	return err
}

// Decode expands environment references in data, unmarshals it into target
// and validates the result.
func Decode[T any](data []byte, target *T) error {
	expanded := os.Expand(string(data), lookupEnv)
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return validate(target)
}

func validate[T any](target *T) error {
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// lookupEnv resolves NAME and NAME:-fallback.
func lookupEnv(key string) string {
	name, fallback, hasFallback := strings.Cut(key, ":-")
	if v, ok := os.LookupEnv(name); ok && (v != "" || !hasFallback) {
		return v
	}
	return fallback
}
