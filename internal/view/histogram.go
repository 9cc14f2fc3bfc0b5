package view

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tv/internal/filter"
)

// NoBucket marks a histogram with nothing selected.
const NoBucket = -1

// Histogram shows the value distribution of one column. It opens with no
// bucket selected.
type Histogram struct {
	Column int
	Name   string

	buckets  []filter.Bucket
	total    int
	selected int
	offset   int
	width    int
	height   int
}

// NewHistogram wraps precomputed buckets of a column.
func NewHistogram(column int, name string, buckets []filter.Bucket, width, height int) *Histogram {
	h := &Histogram{
		Column:   column,
		Name:     name,
		buckets:  buckets,
		selected: NoBucket,
		width:    width,
		height:   height,
	}
	for _, b := range buckets {
		h.total += b.Count
	}
	return h
}

func (h *Histogram) Buckets() []filter.Bucket { return h.buckets }
func (h *Histogram) Offset() int              { return h.offset }
func (h *Histogram) Total() int               { return h.total }

// Selected returns the selected bucket index, or NoBucket.
func (h *Histogram) Selected() int { return h.selected }

// SelectedBucket returns the selected bucket.
func (h *Histogram) SelectedBucket() (filter.Bucket, bool) {
	if h.selected == NoBucket {
		return filter.Bucket{}, false
	}
	return h.buckets[h.selected], true
}

// SelectedRow returns the selection relative to the bucket window, or -1.
func (h *Histogram) SelectedRow() int {
	if h.selected == NoBucket {
		return -1
	}
	return h.selected - h.offset
}

func (h *Histogram) SetViewport(width, height int) {
	h.width, h.height = max(width, 0), max(height, 0)
	h.offset = clamp(h.offset, 0, h.maxOffset())
	h.follow()
}

// Move changes the selection. Moving down from no selection selects the
// first bucket; moving up past the first bucket clears the selection.
func (h *Histogram) Move(delta int) {
	if len(h.buckets) == 0 || delta == 0 {
		return
	}
	next := h.selected + delta
	if h.selected == NoBucket {
		if delta < 0 {
			return
		}
		next = delta - 1
	}
	if next < 0 {
		h.selected = NoBucket
		return
	}
	h.selected = min(next, len(h.buckets)-1)
	h.follow()
}

// Page moves the bucket window by whole viewports. A selection is carried
// along and kept inside the window.
func (h *Histogram) Page(pages int) {
	page := max(h.height, 1)
	h.offset = clamp(h.offset+pages*page, 0, h.maxOffset())
	if h.selected != NoBucket {
		h.selected = clamp(h.selected+pages*page, h.offset, min(h.offset+page, len(h.buckets))-1)
	}
}

func (h *Histogram) First() {
	if len(h.buckets) == 0 {
		return
	}
	h.selected = 0
	h.follow()
}

func (h *Histogram) Last() {
	if len(h.buckets) == 0 {
		return
	}
	h.selected = len(h.buckets) - 1
	h.follow()
}

func (h *Histogram) maxOffset() int {
	return max(len(h.buckets)-max(h.height, 1), 0)
}

func (h *Histogram) follow() {
	if h.selected == NoBucket {
		return
	}
	page := max(h.height, 1)
	if h.selected < h.offset {
		h.offset = h.selected
	}
	if h.selected >= h.offset+page {
		h.offset = h.selected - page + 1
	}
}

// CountLabel renders a bucket's share of the total, e.g. "60% 3".
func CountLabel(count, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(count) * 100 / float64(total)
	}
	return fmt.Sprintf("%.0f%% %d", pct, count)
}

// Columns renders the bucket window as a count column and a value column.
func (h *Histogram) Columns() []ColumnView {
	end := min(h.offset+h.height, len(h.buckets))
	var counts, values []string
	countWidth := len("count")
	for _, b := range h.buckets[h.offset:max(end, h.offset)] {
		label := CountLabel(b.Count, h.total)
		counts = append(counts, label)
		values = append(values, b.Value)
		countWidth = max(countWidth, runewidth.StringWidth(label))
	}
	valueWidth := max(h.width-countWidth-ColumnSeparatorWidth, 0)
	for i := range values {
		values[i] = Fit(values[i], valueWidth)
	}
	return []ColumnView{
		{Name: "count", Column: -1, Width: countWidth, Cells: counts},
		{Name: VisibleName(h.Name, valueWidth), Column: h.Column, Width: valueWidth, Cells: values},
	}
}
