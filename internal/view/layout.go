// Package view holds the projections a loaded store is displayed through:
// the table grid, single records and column histograms.
package view

import (
	"github.com/mattn/go-runewidth"
)

// Constants for component sizes
const (
	TableHeaderLines     = 1 // Column names
	StatusLineCount      = 1 // Title, message and position, or the command line
	ScrollbarWidth       = 1
	ColumnSeparatorWidth = 1
	MinTableHeight       = 1
	CollapsedWidth       = 3
	MinIndexWidth        = 3
)

const (
	CollapsedMarker = "⋮"
	CollapsedName   = "..."
	ellipsis        = "…"
)

// Layout is the screen geometry a frame is rendered with.
type Layout struct {
	Width        int   `json:"width"`
	Height       int   `json:"height"`
	TableWidth   int   `json:"table_width"`
	TableHeight  int   `json:"table_height"`
	IndexWidth   int   `json:"index_width"`
	HeaderHeight int   `json:"header_height"`
	StatusHeight int   `json:"status_height"`
	ColumnX      []int `json:"column_x"`
}

// ComputeLayout splits a terminal of the given size into header, table and
// status areas. The table area excludes the scrollbar.
func ComputeLayout(width, height int) Layout {
	return Layout{
		Width:        width,
		Height:       height,
		TableWidth:   max(width-ScrollbarWidth, 0),
		TableHeight:  max(height-TableHeaderLines-StatusLineCount, MinTableHeight),
		HeaderHeight: TableHeaderLines,
		StatusHeight: StatusLineCount,
	}
}

// ColumnView is the rendered window of one column.
type ColumnView struct {
	Name    string   `json:"name"`
	Column  int      `json:"column"` // store column index, -1 for synthetic columns
	Width   int      `json:"width"`
	Cells   []string `json:"cells"`
	Partial bool     `json:"partial,omitempty"`
}

// VisibleName fits a column name into width, marking truncation with "...".
// Names do not fit at all below three cells.
func VisibleName(name string, width int) string {
	if width < 3 {
		return ""
	}
	if runewidth.StringWidth(name) <= width {
		return name
	}
	return runewidth.Truncate(name, width, "...")
}

// Fit truncates a cell to width display cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
