package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oakwood-commons/tv/internal/store"
)

// SearchMode selects how a query is matched against cells.
type SearchMode int

const (
	SearchSubstring SearchMode = iota
	SearchRegex
)

func (m SearchMode) String() string {
	if m == SearchRegex {
		return "regex"
	}
	return "substring"
}

// Query is one search request.
type Query struct {
	Text       string
	Mode       SearchMode
	IgnoreCase bool
}

func (q Query) matcher() (func(string) bool, error) {
	switch q.Mode {
	case SearchRegex:
		pattern := q.Text
		if q.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", q.Text, err)
		}
		return re.MatchString, nil
	default:
		if q.IgnoreCase {
			term := strings.ToLower(q.Text)
			return func(cell string) bool { return strings.Contains(strings.ToLower(cell), term) }, nil
		}
		return func(cell string) bool { return strings.Contains(cell, q.Text) }, nil
	}
}

// Hit is a matching cell: Row is a position in the searched subset and
// Column a store column index.
type Hit struct {
	Row    int
	Column int
}

// Hits is an ordered result set with a wrapping cursor.
type Hits struct {
	Query Query
	items []Hit
	pos   int
}

// Search scans columns of every row in rows and returns hits in row-major
// order. An empty query matches nothing.
func Search(s *store.Store, rows store.Rows, columns []int, q Query) (*Hits, error) {
	h := &Hits{Query: q}
	if q.Text == "" {
		return h, nil
	}
	match, err := q.matcher()
	if err != nil {
		return nil, err
	}
	for pos, row := range rows {
		for _, col := range columns {
			if match(s.Cell(col, row)) {
				h.items = append(h.items, Hit{Row: pos, Column: col})
			}
		}
	}
	return h, nil
}

// Len returns the number of hits.
func (h *Hits) Len() int {
	if h == nil {
		return 0
	}
	return len(h.items)
}

// Index returns the 0-based position of the current hit.
func (h *Hits) Index() int { return h.pos }

// Current returns the hit under the cursor.
func (h *Hits) Current() (Hit, bool) {
	if h.Len() == 0 {
		return Hit{}, false
	}
	return h.items[h.pos], true
}

// Seek moves the cursor to the first hit at or after row, wrapping to the
// first hit when there is none.
func (h *Hits) Seek(row int) (Hit, bool) {
	if h.Len() == 0 {
		return Hit{}, false
	}
	h.pos = 0
	for i, hit := range h.items {
		if hit.Row >= row {
			h.pos = i
			break
		}
	}
	return h.items[h.pos], true
}

// Next advances the cursor, wrapping after the last hit.
func (h *Hits) Next() (Hit, bool) {
	if h.Len() == 0 {
		return Hit{}, false
	}
	h.pos = (h.pos + 1) % len(h.items)
	return h.items[h.pos], true
}

// Prev moves the cursor back, wrapping before the first hit.
func (h *Hits) Prev() (Hit, bool) {
	if h.Len() == 0 {
		return Hit{}, false
	}
	h.pos = (h.pos - 1 + len(h.items)) % len(h.items)
	return h.items[h.pos], true
}

// All returns the hits in order.
func (h *Hits) All() []Hit {
	if h == nil {
		return nil
	}
	return h.items
}
