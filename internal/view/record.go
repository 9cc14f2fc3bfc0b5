package view

import (
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tv/internal/store"
)

// Record shows one row of the subset as a field/value list. The selected row
// moves within the whole subset; the field window scrolls to keep the
// selected field visible.
type Record struct {
	store *store.Store
	rows  store.Rows

	row, field  int
	fieldOffset int
	width       int
	height      int
}

// NewRecord opens a record view on the subset position row.
func NewRecord(s *store.Store, rows store.Rows, row, width, height int) *Record {
	r := &Record{store: s, rows: rows, row: row, width: width, height: height}
	r.clamp()
	return r
}

func (r *Record) Row() int         { return r.row }
func (r *Record) Field() int       { return r.field }
func (r *Record) FieldOffset() int { return r.fieldOffset }

// SelectedField returns the selected field relative to the field window.
func (r *Record) SelectedField() int { return r.field - r.fieldOffset }

// Total returns the subset length the record position is reported against.
func (r *Record) Total() int { return len(r.rows) }

// OriginalRow returns the store row of the selected record, or -1.
func (r *Record) OriginalRow() int {
	if len(r.rows) == 0 {
		return -1
	}
	return r.rows[r.row]
}

// Value returns the selected field's raw value; a missing value is empty.
func (r *Record) Value() string {
	if len(r.rows) == 0 || r.store.NumColumns() == 0 {
		return ""
	}
	return r.store.RawCell(r.field, r.rows[r.row])
}

func (r *Record) SetViewport(width, height int) {
	r.width, r.height = max(width, 0), max(height, 0)
	r.clamp()
}

// MoveRow moves to another record of the subset.
func (r *Record) MoveRow(delta int) {
	r.row += delta
	r.clamp()
}

func (r *Record) FirstRow() {
	r.row = 0
	r.clamp()
}

func (r *Record) LastRow() {
	r.row = len(r.rows) - 1
	r.clamp()
}

// MoveField moves the field selection.
func (r *Record) MoveField(delta int) {
	r.field += delta
	r.clamp()
}

// PageField moves the field selection by whole viewports.
func (r *Record) PageField(pages int) {
	r.MoveField(pages * max(r.height, 1))
}

func (r *Record) clamp() {
	n := r.store.NumColumns()
	r.row = clamp(r.row, 0, len(r.rows)-1)
	r.field = clamp(r.field, 0, n-1)
	h := max(r.height, 1)
	if r.field < r.fieldOffset {
		r.fieldOffset = r.field
	}
	if r.field >= r.fieldOffset+h {
		r.fieldOffset = r.field - h + 1
	}
	r.fieldOffset = clamp(r.fieldOffset, 0, max(n-h, 0))
}

// Columns renders the field window as a name column and a value column.
func (r *Record) Columns() []ColumnView {
	n := r.store.NumColumns()
	end := min(r.fieldOffset+r.height, n)
	if end <= r.fieldOffset || len(r.rows) == 0 {
		return []ColumnView{
			{Name: "field", Column: -1, Width: 5},
			{Name: "value", Column: -1, Width: max(r.width-6, 0)},
		}
	}

	names := make([]string, 0, end-r.fieldOffset)
	values := make([]string, 0, end-r.fieldOffset)
	nameWidth := len("field")
	row := r.rows[r.row]
	for c := r.fieldOffset; c < end; c++ {
		col := r.store.Column(c)
		names = append(names, col.Name)
		values = append(values, col.Values[row])
		nameWidth = max(nameWidth, runewidth.StringWidth(col.Name))
	}
	if r.width > 0 {
		nameWidth = min(nameWidth, max(r.width/2, 3))
	}
	valueWidth := max(r.width-nameWidth-ColumnSeparatorWidth, 0)
	for i := range names {
		names[i] = Fit(names[i], nameWidth)
		values[i] = Fit(values[i], valueWidth)
	}
	return []ColumnView{
		{Name: "field", Column: -1, Width: nameWidth, Cells: names},
		{Name: "value", Column: -1, Width: valueWidth, Cells: values},
	}
}
