package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/goccy/go-json"
)

// Snapshot output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// WriteSnapshot replays keys against m and writes the resulting frame: the
// rendered text, or the engine snapshot as JSON.
func WriteSnapshot(w io.Writer, m *Model, keys []string, format string) error {
	ApplyStartupKeys(m, keys)
	switch format {
	case "", FormatText:
		frame := m.Frame()
		if m.noColor {
			frame = ansi.Strip(frame)
		}
		_, err := fmt.Fprintln(w, frame)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(m.engine.Snapshot(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
}
