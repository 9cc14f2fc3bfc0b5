package tui

import (
	"maps"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tv/internal/config"
	"github.com/oakwood-commons/tv/internal/limiter"
	"github.com/oakwood-commons/tv/internal/loader"
)

// Clipboard receives the text of copied cells and rows.
type Clipboard interface {
	WriteAll(text string) error
}

// Config holds host-provided settings for viewing a file.
type Config struct {
	Width   int // 0 detects the terminal size
	Height  int
	NoColor bool

	KeyMode     string            // "vim" (default) or "function"
	KeyBindings map[string]string // extra key to action bindings; "none" unbinds
	StartKeys   []string          // replayed before the first frame, e.g. "<CR>"

	MaxColumnWidth int // 0 keeps the default cap
	ShowIndex      bool
	IgnoreCase     bool // case-insensitive substring search

	MaxFileSize int64 // bytes; 0 keeps the default limit
	MaxRows     int
	Offset      int
	Limit       int
	Tail        int // mutually exclusive with Limit

	HelpText  string    // replaces the built-in help popup
	Clipboard Clipboard // nil keeps copies in memory
	Logger    logr.Logger
}

// DefaultConfig returns a baseline config with the same defaults as the CLI.
func DefaultConfig() Config {
	cfg, _ := config.Default()
	return Config{
		KeyMode:        cfg.Keys.Mode,
		MaxColumnWidth: cfg.Display.MaxColumnWidth,
		MaxFileSize:    cfg.Limits.MaxFileSize,
		MaxRows:        cfg.Limits.MaxRows,
	}
}

// settings merges c over the embedded defaults.
func (c Config) settings() (config.Config, error) {
	cfg, err := config.Default()
	if err != nil {
		return cfg, err
	}
	if c.KeyMode != "" {
		cfg.Keys.Mode = c.KeyMode
	}
	if len(c.KeyBindings) > 0 {
		if cfg.Keys.Bindings == nil {
			cfg.Keys.Bindings = map[string]string{}
		}
		maps.Copy(cfg.Keys.Bindings, c.KeyBindings)
	}
	if c.MaxColumnWidth > 0 {
		cfg.Display.MaxColumnWidth = c.MaxColumnWidth
	}
	if c.MaxFileSize > 0 {
		cfg.Limits.MaxFileSize = c.MaxFileSize
	}
	if c.MaxRows > 0 {
		cfg.Limits.MaxRows = c.MaxRows
	}
	cfg.Display.ShowIndex = cfg.Display.ShowIndex || c.ShowIndex
	cfg.Display.NoColor = cfg.Display.NoColor || c.NoColor
	cfg.Search.IgnoreCase = cfg.Search.IgnoreCase || c.IgnoreCase
	return cfg, cfg.Validate()
}

func (c Config) loadOptions(cfg config.Config) loader.Options {
	return loader.Options{
		MaxFileSize: cfg.Limits.MaxFileSize,
		MaxRows:     cfg.Limits.MaxRows,
		Window:      limiter.Config{Limit: c.Limit, Offset: c.Offset, Tail: c.Tail},
		Workers:     cfg.Limits.Workers,
	}
}
