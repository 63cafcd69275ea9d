// Package config loads the tool configuration from an optional YAML file
// with environment variable overrides on top.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config controls how saves are read and how output is rendered.
type Config struct {
	// TokensPath points at a "name token" listing for binary saves.
	// Empty means binary field tokens surface as hex placeholders.
	TokensPath string `yaml:"tokens_path" env:"ANNALIST_TOKENS"`

	// SkipSections lists top-level sections to pass over during ingestion.
	SkipSections []string `yaml:"skip_sections" env:"ANNALIST_SKIP_SECTIONS" envSeparator:","`

	// RefEncoding is how entity handles serialize: descriptor or id.
	RefEncoding string `yaml:"ref_encoding" env:"ANNALIST_REF_ENCODING"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"ANNALIST_LOG_LEVEL"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		RefEncoding: "descriptor",
		LogLevel:    "info",
	}
}

// Load reads the YAML file at path, if it exists, and applies environment
// overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()
		if err := decodeYAML(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and applies environment
// overrides. Useful in tests where configs come from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	switch c.RefEncoding {
	case "", "descriptor", "id":
	default:
		return fmt.Errorf("config: ref_encoding %q is invalid; valid values: descriptor, id", c.RefEncoding)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level %q is invalid; valid values: debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// ShouldSkip reports whether a section was configured away.
func (c *Config) ShouldSkip(section string) bool {
	for _, s := range c.SkipSections {
		if s == section {
			return true
		}
	}
	return false
}
