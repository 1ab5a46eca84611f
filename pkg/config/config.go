// Package config loads YAML configuration files with environment variable
// expansion and optional validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves.
// Validate may also fill in defaults.
type Validator interface {
	Validate() error
}

// Load reads filename into target. ${VAR} references are expanded from the
// environment before decoding; unknown keys are rejected so that typos in a
// config file do not go unnoticed.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}
	if err := Decode(bytes.NewReader(data), target); err != nil {
		return fmt.Errorf("config: %s: %w", filename, err)
	}
	return nil
}

// Decode expands, decodes and validates YAML read from r. An empty document
// leaves target untouched apart from validation.
func Decode[T any](r io.Reader, target *T) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewBufferString(os.ExpandEnv(string(raw))))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// LoadOptional behaves like Load but keeps target as is, still validated,
// when filename does not exist.
func LoadOptional[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if v, ok := any(target).(Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("config: defaults: validation failed: %w", err)
			}
		}
		return nil
	}
	return Load(filename, target)
}
