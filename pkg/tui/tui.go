// Package tui embeds the tv viewer in other programs: Run opens a file
// interactively and RenderSnapshot draws a single frame of it.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/tv/internal/clipboard"
	"github.com/oakwood-commons/tv/internal/engine"
	"github.com/oakwood-commons/tv/internal/help"
	"github.com/oakwood-commons/tv/internal/ui"
	"github.com/oakwood-commons/tv/pkg/logger"
)

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS and LINES
// environment variables and finally to 80x24.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	width, height = engine.DefaultWidth, engine.DefaultHeight
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		width = w
	}
	if h, err := strconv.Atoi(os.Getenv("LINES")); err == nil && h > 0 {
		height = h
	}
	return width, height
}

// newModel builds the viewer for path. A failed load is returned together
// with a usable model so callers can still show the error.
func newModel(ctx context.Context, path string, cfg Config) (*ui.Model, error) {
	settings, err := cfg.settings()
	if err != nil {
		return nil, err
	}
	opts := cfg.loadOptions(settings)
	if err := opts.Window.Validate(); err != nil {
		return nil, err
	}
	keys, err := ui.NewKeymap(settings.Keys.Mode, settings.Keys.Bindings)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}

	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		width, height = DetectTerminalSize()
	}
	var clip engine.Clipboard = &clipboard.Memory{}
	if cfg.Clipboard != nil {
		clip = cfg.Clipboard
	}
	lgr := cfg.Logger
	if lgr.GetSink() == nil {
		lgr = *logger.FromContext(ctx)
	}
	helpText := func() string { return help.Text(settings.Keys.Mode) }
	if cfg.HelpText != "" {
		helpText = func() string { return cfg.HelpText }
	}

	e := engine.New(engine.Options{
		Context:     ctx,
		Config:      settings,
		Clipboard:   clip,
		Logger:      lgr,
		LoadOptions: opts,
		HelpText:    helpText,
		Width:       width,
		Height:      height,
	})
	m := ui.NewModel(e, ui.Options{Keys: keys, NoColor: settings.Display.NoColor, Logger: lgr})
	if path == "" {
		return m, nil
	}
	return m, e.Update(engine.LoadFile{Path: path})
}

// Run opens path and drives the viewer until the user quits or ctx is
// cancelled. Load errors are shown on the status line rather than returned.
// Host applications can pass optional tea.ProgramOption values to control IO.
func Run(ctx context.Context, path string, cfg Config, opts ...tea.ProgramOption) error {
	m, err := newModel(ctx, path, cfg)
	if m == nil {
		return err
	}
	return ui.Run(ctx, m, cfg.StartKeys, opts...)
}

// RenderSnapshot opens path, replays cfg.StartKeys and returns the resulting
// frame as plain text when NoColor is set, styled text otherwise.
func RenderSnapshot(ctx context.Context, path string, cfg Config) (string, error) {
	m, err := newModel(ctx, path, cfg)
	if err != nil {
		return "", err
	}
	ui.ApplyStartupKeys(m, cfg.StartKeys)
	if cfg.NoColor {
		return m.Text(), nil
	}
	return m.Frame(), nil
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
