package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML file into the config struct based on its yaml
// tags. Unlike Load it performs no caching: settings files like thumbnail
// size lists are read once at startup anyway.
//
// Unknown keys in the file are rejected so typos surface immediately.
func LoadYAML[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingConfigFile, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoadYAML works like LoadYAML but panics on failure.
func MustLoadYAML[T any](path string, v *T) {
	if err := LoadYAML(path, v); err != nil {
		panic(fmt.Sprintf("failed to load yaml configuration %s: %v", path, err))
	}
}
