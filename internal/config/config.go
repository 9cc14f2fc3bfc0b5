package config

import (
	_ "embed"
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// DefaultYAML returns a copy of the embedded default config YAML bytes.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration. It is the
// single source of truth for default settings.
func Default() (Config, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return embeddedConfig.Clone(), embeddedConfigErr
}

// Clone returns a copy that shares no maps with c.
func (c Config) Clone() Config {
	c.Keys.Bindings = maps.Clone(c.Keys.Bindings)
	return c
}

// Merge decodes data on top of base. Fields absent from data keep their
// base values. name selects the decoder: files ending in .toml are TOML,
// everything else is YAML.
func Merge(base Config, name string, data []byte) (Config, error) {
	cfg := base.Clone()
	var err error
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return base, fmt.Errorf("decode %s: %w", filepath.Base(name), err)
	}
	return cfg, nil
}

// Validate reports the first setting outside its allowed range.
func (c Config) Validate() error {
	if c.Display.MaxColumnWidth < 0 {
		return fmt.Errorf("display.max_column_width must be >= 0")
	}
	if c.Display.ColumnMargin < 0 {
		return fmt.Errorf("display.column_margin must be >= 0")
	}
	if c.Limits.MaxFileSize < 0 {
		return fmt.Errorf("limits.max_file_size must be >= 0")
	}
	if c.Limits.MaxRows < 0 {
		return fmt.Errorf("limits.max_rows must be >= 0")
	}
	if c.Limits.Workers < 0 {
		return fmt.Errorf("limits.workers must be >= 0")
	}
	switch c.Search.Scope {
	case ScopeAll, ScopeVisible:
	default:
		return fmt.Errorf("search.scope must be %q or %q, got %q", ScopeAll, ScopeVisible, c.Search.Scope)
	}
	switch c.Keys.Mode {
	case KeyModeVim, KeyModeFunction:
	default:
		return fmt.Errorf("keys.mode must be %q or %q, got %q", KeyModeVim, KeyModeFunction, c.Keys.Mode)
	}
	return nil
}

// YAML renders c in the layout of the embedded defaults.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
