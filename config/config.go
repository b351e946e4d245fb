// Package config handles hbcdecomp.toml settings for the command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name looked up by FindAndLoad.
const FileName = "hbcdecomp.toml"

var ErrInvalid = errors.New("invalid configuration")

// Config is the contents of hbcdecomp.toml.
type Config struct {
	Decode Decode `toml:"decode"`
	Output Output `toml:"output"`
	Log    Log    `toml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Decode configures instruction decoding.
type Decode struct {
	// Workers bounds concurrent function decodes; 0 means one per CPU.
	Workers int `toml:"workers"`
}

// Output configures how results are printed.
type Output struct {
	// Format is "json" or "cbor" for export.
	Format string `toml:"format"`
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
	// ResolveStrings prints string literals inline in disassembly.
	ResolveStrings bool `toml:"resolve-strings"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if c.Decode.Workers < 0 {
		return fmt.Errorf("%w: decode.workers must not be negative, got %d", ErrInvalid, c.Decode.Workers)
	}
	switch c.Output.Format {
	case "json", "cbor":
	default:
		return fmt.Errorf("%w: output.format %q", ErrInvalid, c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: output.color %q", ErrInvalid, c.Output.Color)
	}
	return nil
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir looking for hbcdecomp.toml. It returns
// the defaults when no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
