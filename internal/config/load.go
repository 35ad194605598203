package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads the file at path over the defaults and validates the result.
// A missing file is not an error; the defaults are returned.
// Supports: .toml, .yaml/.yml, .json
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := decode(path, bytes.NewReader(data), &cfg); err != nil {
		return Default(), err
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads settings in the given format ("toml", "yaml" or "json")
// from r over the defaults.
func Decode(format string, r io.Reader) (Config, error) {
	cfg := Default()
	if err := decode("<reader>."+format, r, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func decode(source string, r io.Reader, cfg *Config) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".toml":
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return newParseError(source, err)
	}
	return nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var tomlErr *toml.DecodeError
	if errors.As(err, &tomlErr) {
		pe.Line, pe.Column = tomlErr.Position()
	}
	var yamlErr *yaml.TypeError
	if errors.As(err, &yamlErr) && len(yamlErr.Errors) > 0 {
		pe.Message = strings.Join(yamlErr.Errors, "; ")
	}
	return pe
}
