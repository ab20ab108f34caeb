package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Parse reads YAML parameters on top of DefaultParams.
// Keys that are absent keep their default; unknown keys are rejected with
// ErrConfiguration so typos do not silently fall back to defaults.
func Parse(data []byte) (Params, error) {
	p := DefaultParams()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return p, nil
}

// Load reads YAML parameters from path. See Parse.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "config.Load",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to read configuration file")
		return Params{}, fmt.Errorf("reading %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return Params{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "config.Load",
		"path":     path,
	}).Info("Loaded codec parameters")
	return p, nil
}

// Marshal renders p as YAML, the inverse of Parse.
func Marshal(p Params) ([]byte, error) {
	return yaml.Marshal(p)
}
