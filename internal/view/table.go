package view

import (
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tv/internal/filter"
	"github.com/oakwood-commons/tv/internal/store"
)

// ColumnStatus controls how wide a column is drawn.
type ColumnStatus int

const (
	StatusNormal    ColumnStatus = iota // natural width, capped
	StatusExpanded                      // natural width, uncapped
	StatusCollapsed                     // a fixed narrow marker
)

func (s ColumnStatus) String() string {
	switch s {
	case StatusExpanded:
		return "expanded"
	case StatusCollapsed:
		return "collapsed"
	default:
		return "normal"
	}
}

// TableOptions are the display settings of the grid.
type TableOptions struct {
	MaxColumnWidth int // cap for normal columns; 0 disables
	ColumnMargin   int // padding added to the natural width
	ShowIndex      bool
	FirstRow       int // file row of store row 0 when the load was windowed
}

// Position is the scroll state of a table, saved across filter levels.
type Position struct {
	Row, Column             int
	RowOffset, ColumnOffset int
}

// Table is the grid projection of a row subset. Cursor row and column are
// absolute (subset position, store column); the rendered window is rebuilt
// from scratch after every change.
type Table struct {
	store *store.Store
	rows  store.Rows
	opts  TableOptions

	status map[int]ColumnStatus
	hist   map[int][]filter.Bucket
	hits   *filter.Hits

	width, height int
	pos           Position
	showIndex     bool

	columns      []ColumnView
	fullyVisible int
	index        ColumnView
}

// NewTable builds a grid over rows of s.
func NewTable(s *store.Store, rows store.Rows, opts TableOptions) *Table {
	t := &Table{
		store:     s,
		rows:      rows,
		opts:      opts,
		status:    make(map[int]ColumnStatus),
		hist:      make(map[int][]filter.Bucket),
		showIndex: opts.ShowIndex,
	}
	t.rebuild()
	return t
}

// SetViewport sets the area available to the grid: width excludes the
// scrollbar, height counts data rows only.
func (t *Table) SetViewport(width, height int) {
	t.width, t.height = max(width, 0), max(height, 0)
	t.rebuild()
}

// SetRows replaces the active subset. Cached histograms and search hits
// belong to the old subset and are dropped.
func (t *Table) SetRows(rows store.Rows) {
	t.rows = rows
	t.hist = make(map[int][]filter.Bucket)
	t.hits = nil
	t.rebuild()
}

// Restore moves the cursor and offsets back to a saved position, clamped to
// the current subset.
func (t *Table) Restore(p Position) {
	t.pos = p
	t.rebuild()
}

// Position returns the current cursor and offsets.
func (t *Table) Position() Position { return t.pos }

func (t *Table) Rows() store.Rows            { return t.rows }
func (t *Table) CursorRow() int              { return t.pos.Row }
func (t *Table) CursorColumn() int           { return t.pos.Column }
func (t *Table) RowOffset() int              { return t.pos.RowOffset }
func (t *Table) ColumnOffset() int           { return t.pos.ColumnOffset }
func (t *Table) Height() int                 { return t.height }
func (t *Table) Width() int                  { return t.width }
func (t *Table) ShowIndex() bool             { return t.showIndex }
func (t *Table) Columns() []ColumnView       { return t.columns }
func (t *Table) Index() ColumnView           { return t.index }
func (t *Table) Hits() *filter.Hits          { return t.hits }
func (t *Table) SetHits(h *filter.Hits)      { t.hits = h }
func (t *Table) Status(col int) ColumnStatus { return t.status[col] }

// SelectedColumn returns the cursor column's position among the rendered
// columns, or -1 when nothing is rendered.
func (t *Table) SelectedColumn() int {
	for i, c := range t.columns {
		if c.Column == t.pos.Column {
			return i
		}
	}
	return -1
}

// SelectedRow returns the cursor row relative to the row window, or -1 for
// an empty subset.
func (t *Table) SelectedRow() int {
	if len(t.rows) == 0 {
		return -1
	}
	return t.pos.Row - t.pos.RowOffset
}

// FullyVisible returns how many rendered columns are drawn at full width.
func (t *Table) FullyVisible() int { return t.fullyVisible }

// IndexWidth returns the screen cells taken by the index column and its separator.
func (t *Table) IndexWidth() int {
	if !t.showIndex {
		return 0
	}
	return t.index.Width + ColumnSeparatorWidth
}

// ColumnX returns the screen x position of each rendered column.
func (t *Table) ColumnX() []int {
	xs := make([]int, len(t.columns))
	x := t.IndexWidth()
	for i, c := range t.columns {
		xs[i] = x
		x += c.Width + ColumnSeparatorWidth
	}
	return xs
}

// MoveRows moves the cursor by delta rows, clamped to the subset.
func (t *Table) MoveRows(delta int) {
	t.pos.Row += delta
	t.rebuild()
}

// Page moves the cursor by whole viewports.
func (t *Table) Page(pages int) {
	t.MoveRows(pages * max(t.height, 1))
}

// FirstRow moves the cursor to the first row of the subset.
func (t *Table) FirstRow() {
	t.pos.Row = 0
	t.rebuild()
}

// LastRow moves the cursor to the last row of the subset.
func (t *Table) LastRow() {
	t.pos.Row = len(t.rows) - 1
	t.rebuild()
}

// MoveColumns moves the cursor by delta columns, clamped to the store.
func (t *Table) MoveColumns(delta int) {
	t.pos.Column += delta
	t.rebuild()
}

// FirstColumn moves the cursor and the column offset to the first column.
func (t *Table) FirstColumn() {
	t.pos.Column = 0
	t.pos.ColumnOffset = 0
	t.rebuild()
}

// LastColumn moves the cursor to the last column and scrolls as little as
// possible for it to be drawn at full width.
func (t *Table) LastColumn() {
	last := t.store.NumColumns() - 1
	if last < 0 {
		return
	}
	t.pos.Column = last
	t.pos.ColumnOffset = t.leftmostOffset(last)
	t.rebuild()
}

// SelectCell puts the cursor on a subset row and store column, scrolling
// both axes as needed.
func (t *Table) SelectCell(row, col int) {
	t.pos.Row, t.pos.Column = row, col
	t.rebuild()
}

// ToggleIndex shows or hides the synthetic row number column.
func (t *Table) ToggleIndex() {
	t.showIndex = !t.showIndex
	t.rebuild()
}

// Expand cycles the cursor column: normal and collapsed become expanded,
// expanded becomes collapsed.
func (t *Table) Expand() {
	col := t.pos.Column
	if t.status[col] == StatusExpanded {
		t.setStatus(col, StatusCollapsed)
	} else {
		t.setStatus(col, StatusExpanded)
	}
	t.rebuild()
}

// Collapse cycles the cursor column: collapsed becomes normal, normal and
// expanded become collapsed.
func (t *Table) Collapse() {
	col := t.pos.Column
	if t.status[col] == StatusCollapsed {
		t.setStatus(col, StatusNormal)
	} else {
		t.setStatus(col, StatusCollapsed)
	}
	t.rebuild()
}

func (t *Table) setStatus(col int, s ColumnStatus) {
	if t.store.NumColumns() == 0 {
		return
	}
	if s == StatusNormal {
		delete(t.status, col)
	} else {
		t.status[col] = s
	}
	if s == StatusCollapsed {
		t.pos.Column = t.nearestOpenColumn(col)
	}
}

// nearestOpenColumn finds the closest column that is not collapsed, looking
// right first. It returns col itself when every column is collapsed.
func (t *Table) nearestOpenColumn(col int) int {
	n := t.store.NumColumns()
	for d := 1; d < n; d++ {
		if r := col + d; r < n && t.status[r] != StatusCollapsed {
			return r
		}
		if l := col - d; l >= 0 && t.status[l] != StatusCollapsed {
			return l
		}
	}
	return col
}

// Histogram returns the buckets of a column over the current subset,
// computing them on first use.
func (t *Table) Histogram(col int) []filter.Bucket {
	if b, ok := t.hist[col]; ok {
		return b
	}
	b := filter.Histogram(t.store, t.rows, col)
	t.hist[col] = b
	return b
}

// VisibleColumns returns the store indices of the rendered columns.
func (t *Table) VisibleColumns() []int {
	out := make([]int, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Column
	}
	return out
}

// BuildIndex renders the row-number column for the current row window.
// Labels are original (1-based) file row numbers; the width never drops below three.
func (t *Table) BuildIndex() ColumnView {
	window := t.rows.Slice(t.pos.RowOffset, t.pos.RowOffset+t.height)
	labels := make([]string, len(window))
	width := MinIndexWidth
	for i, row := range window {
		labels[i] = strconv.Itoa(row + 1 + t.opts.FirstRow)
		width = max(width, len(labels[i]))
	}
	return ColumnView{Name: "", Column: -1, Width: width, Cells: labels}
}

func (t *Table) columnWidth(col int) int {
	status := t.status[col]
	if status == StatusCollapsed {
		return CollapsedWidth
	}
	c := t.store.Column(col)
	w := max(runewidth.StringWidth(c.Name), c.MaxWidth()) + t.opts.ColumnMargin
	if status == StatusNormal && t.opts.MaxColumnWidth > 0 {
		w = min(w, t.opts.MaxColumnWidth)
	}
	return max(w, 1)
}

func (t *Table) dataWidth() int {
	return max(t.width-t.IndexWidth(), 0)
}

// layout lists the columns drawn from offset on. Fully visible columns come
// first; at most one partial column fills the remaining width.
func (t *Table) layout(offset int) (cols, widths []int, full int) {
	avail := t.dataWidth()
	used := 0
	n := t.store.NumColumns()
	for c := offset; c < n; c++ {
		w := t.columnWidth(c)
		if used+w+ColumnSeparatorWidth <= avail {
			cols = append(cols, c)
			widths = append(widths, w)
			used += w + ColumnSeparatorWidth
			full++
			continue
		}
		if rem := avail - used; rem > 0 {
			cols = append(cols, c)
			widths = append(widths, min(rem, w))
		}
		break
	}
	if len(cols) == 0 && offset < n {
		cols, widths = []int{offset}, []int{0}
	}
	return cols, widths, full
}

// leftmostOffset is the smallest column offset that still draws col at full width.
func (t *Table) leftmostOffset(col int) int {
	avail := t.dataWidth()
	off := col
	used := t.columnWidth(col) + ColumnSeparatorWidth
	for off > 0 {
		w := t.columnWidth(off-1) + ColumnSeparatorWidth
		if used+w > avail {
			break
		}
		used += w
		off--
	}
	return off
}

func (t *Table) ensureRowVisible() {
	h := max(t.height, 1)
	if t.pos.Row < t.pos.RowOffset {
		t.pos.RowOffset = t.pos.Row
	}
	if t.pos.Row >= t.pos.RowOffset+h {
		t.pos.RowOffset = t.pos.Row - h + 1
	}
	t.pos.RowOffset = clamp(t.pos.RowOffset, 0, max(len(t.rows)-h, 0))
}

func (t *Table) ensureColumnVisible() {
	if t.pos.Column < t.pos.ColumnOffset {
		t.pos.ColumnOffset = t.pos.Column
		return
	}
	if off := t.leftmostOffset(t.pos.Column); t.pos.ColumnOffset < off {
		t.pos.ColumnOffset = off
	}
}

func (t *Table) rebuild() {
	n := t.store.NumColumns()
	t.pos.Row = clamp(t.pos.Row, 0, len(t.rows)-1)
	t.pos.Column = clamp(t.pos.Column, 0, n-1)
	t.ensureRowVisible()
	t.index = t.BuildIndex()

	if n == 0 {
		t.columns, t.fullyVisible = nil, 0
		t.pos.ColumnOffset = 0
		return
	}
	t.pos.ColumnOffset = clamp(t.pos.ColumnOffset, 0, n-1)
	t.ensureColumnVisible()

	cols, widths, full := t.layout(t.pos.ColumnOffset)
	window := t.rows.Slice(t.pos.RowOffset, t.pos.RowOffset+t.height)
	views := make([]ColumnView, len(cols))
	for i, col := range cols {
		views[i] = t.columnView(col, widths[i], window, i >= full)
	}
	t.columns, t.fullyVisible = views, full
}

func (t *Table) columnView(col, width int, window store.Rows, partial bool) ColumnView {
	cells := make([]string, len(window))
	if t.status[col] == StatusCollapsed {
		for i := range cells {
			cells[i] = CollapsedMarker
		}
		return ColumnView{Name: CollapsedName, Column: col, Width: width, Cells: cells, Partial: partial}
	}
	c := t.store.Column(col)
	for i, row := range window {
		cells[i] = Fit(c.Values[row], width)
	}
	return ColumnView{Name: VisibleName(c.Name, width), Column: col, Width: width, Cells: cells, Partial: partial}
}
