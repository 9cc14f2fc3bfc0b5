package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oakwood-commons/tv/internal/config"
)

// configLoader centralizes config loading so callers avoid duplicating merge
// logic.
type configLoader struct {
	defaultConfig func() (config.Config, error)
	readFile      func(string) ([]byte, error)
}

var cfgLoader = configLoader{defaultConfig: config.Default, readFile: os.ReadFile}

func loadMergedConfig(cfgPath string) (config.Config, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

// loadMergedConfig merges the file at cfgPath, if any, over the embedded
// defaults and validates the result.
func (l configLoader) loadMergedConfig(cfgPath string) (config.Config, error) {
	cfg, err := l.defaultConfig()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if cfgPath != "" {
		data, err := l.readFile(cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = config.Merge(cfg, cfgPath, data); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", displayPath(cfgPath), err)
	}
	return cfg, nil
}

func displayPath(p string) string {
	if p == "" {
		return "(defaults)"
	}
	return p
}

// resolveConfigPath returns the explicit configFile if set, otherwise the
// first of $XDG_CONFIG_HOME/tv/config.{yaml,toml} or
// ~/.config/tv/config.{yaml,toml} that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "tv")
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", "tv")
	}
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
