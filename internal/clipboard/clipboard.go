// Package clipboard writes copied cells and rows to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available, for
// example on a headless Linux host without xclip, xsel or wl-copy.
var ErrUnsupported = errors.New("no clipboard utility available")

// System writes to the operating system clipboard.
type System struct{}

// WriteAll replaces the clipboard contents with text.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Memory keeps the last written text. It stands in for the system clipboard
// in snapshot mode and tests.
type Memory struct {
	Text   string
	Writes int
}

func (m *Memory) WriteAll(text string) error {
	m.Text = text
	m.Writes++
	return nil
}
