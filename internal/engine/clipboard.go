package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClipboard wraps every failed clipboard write. It is reported on the
// status line and never returned from Update.
var ErrClipboard = errors.New("clipboard error")

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

func (m *Model) copyText(text, what string) {
	if m.clipboard == nil {
		m.setMessage(fmt.Errorf("%w: no clipboard available", ErrClipboard).Error())
		return
	}
	if err := m.clipboard.WriteAll(text); err != nil {
		err = fmt.Errorf("%w: %v", ErrClipboard, err)
		m.log.V(1).Info("copy failed", "error", err.Error())
		m.setMessage(err.Error())
		return
	}
	m.setMessage("Copied " + what)
}

// csvRow joins cells with commas. Quotes are doubled, and cells holding a
// blank, tab, comma or quote are wrapped in quotes.
func csvRow(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		quoted := strings.ContainsAny(c, " \t,\"")
		c = strings.ReplaceAll(c, `"`, `""`)
		if quoted {
			c = `"` + c + `"`
		}
		out[i] = c
	}
	return strings.Join(out, ",")
}
