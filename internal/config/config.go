// Package config loads snex.toml, the per-project compiler settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"snex/internal/trace"
	"snex/internal/types"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "snex.toml"

type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Layout   LayoutConfig   `toml:"layout"`
	Trace    TraceConfig    `toml:"trace"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type CompilerConfig struct {
	MaxDiagnostics int  `toml:"max_diagnostics"`
	HideInternal   bool `toml:"hide_internal"`
}

type LayoutConfig struct {
	// Padding is "legacy" or "natural".
	Padding string `toml:"padding"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Default returns the settings used when no snex.toml exists.
func Default() Config {
	return Config{
		Compiler: CompilerConfig{MaxDiagnostics: 100, HideInternal: true},
		Layout:   LayoutConfig{Padding: types.PaddingLegacy.String()},
		Trace:    TraceConfig{Level: trace.LevelOff.String(), Format: trace.FormatAuto.String()},
	}
}

// Find walks from startDir up to the filesystem root looking for snex.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over the defaults. Keys the file sets override defaults;
// unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest snex.toml above startDir, or the defaults when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if c.Compiler.MaxDiagnostics <= 0 {
		return fmt.Errorf("[compiler].max_diagnostics must be positive, got %d", c.Compiler.MaxDiagnostics)
	}
	if _, err := c.PaddingMode(); err != nil {
		return fmt.Errorf("[layout].padding: %w", err)
	}
	if _, err := c.TraceConfig(); err != nil {
		return fmt.Errorf("[trace]: %w", err)
	}
	return nil
}

func (c Config) PaddingMode() (types.PaddingMode, error) {
	return types.ParsePaddingMode(c.Layout.Padding)
}

// TraceConfig converts the [trace] table into a tracer configuration.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Format: format, OutputPath: c.Trace.Output}, nil
}
