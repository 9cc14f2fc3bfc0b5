package engine

import (
	"fmt"
	"time"

	"github.com/oakwood-commons/tv/internal/store"
	"github.com/oakwood-commons/tv/internal/view"
)

// Snapshot is everything a renderer needs to draw one frame. Snapshots are
// values: nothing in a Snapshot changes after it has been returned.
type Snapshot struct {
	Revision uint64      `json:"revision"`
	Title    string      `json:"title"`
	Mode     ModeKind    `json:"mode"`
	Status   Status      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Popup    string      `json:"popup,omitempty"`
	Prompt   string      `json:"prompt,omitempty"`
	Command  CommandKind `json:"command,omitempty"`

	Columns []view.ColumnView `json:"columns"`
	Index   *view.ColumnView  `json:"index,omitempty"`

	// SelectedRow and SelectedColumn index the rendered window; -1 means
	// nothing is selected.
	SelectedRow    int `json:"selected_row"`
	SelectedColumn int `json:"selected_column"`
	// Position is 1-based; 0 with an empty projection.
	Position int `json:"position"`
	Total    int `json:"total"`

	Filters   []string       `json:"filters,omitempty"`
	Layout    view.Layout    `json:"layout"`
	File      store.FileInfo `json:"file"`
	UpdatedAt time.Time      `json:"-"`
	MessageAt time.Time      `json:"-"`
}

// Changed reports whether s differs from prev.
func (s Snapshot) Changed(prev Snapshot) bool {
	return s.Revision != prev.Revision
}

// Snapshot returns the current frame. Repeated calls between updates return
// the same value.
func (m *Model) Snapshot() Snapshot {
	if m.snap != nil && m.snap.Revision == m.revision {
		return *m.snap
	}
	s := m.buildSnapshot()
	m.snap = &s
	return s
}

func (m *Model) buildSnapshot() Snapshot {
	s := Snapshot{
		Revision:       m.revision,
		Mode:           m.mode.Kind(),
		Status:         m.status,
		Message:        m.message,
		SelectedRow:    -1,
		SelectedColumn: -1,
		Filters:        m.stack.Steps(),
		Layout:         m.layout,
		File:           m.info,
		UpdatedAt:      m.updatedAt,
		MessageAt:      m.messageAt,
	}
	switch mode := m.mode.(type) {
	case PopupMode:
		s.Popup = mode.Text
	case CommandMode:
		s.Prompt = mode.Command.Prompt()
		s.Command = mode.Command
	}

	switch baseMode(m.mode).(type) {
	case RecordMode:
		m.recordFrame(&s)
	case HistogramMode:
		m.histogramFrame(&s)
	default:
		m.tableFrame(&s)
	}

	x := s.Layout.IndexWidth
	s.Layout.ColumnX = make([]int, len(s.Columns))
	for i, c := range s.Columns {
		s.Layout.ColumnX[i] = x
		x += c.Width + view.ColumnSeparatorWidth
	}
	return s
}

func (m *Model) fileTitle() string {
	if name := m.info.Name(); name != "" {
		return name
	}
	return "tv"
}

func (m *Model) tableFrame(s *Snapshot) {
	t := m.table
	s.Title = m.fileTitle()
	if d := m.stack.Describe(); d != "" {
		s.Title += " " + d
	}
	s.Columns = t.Columns()
	if t.ShowIndex() {
		idx := t.Index()
		s.Index = &idx
		s.Layout.IndexWidth = t.IndexWidth()
	}
	s.Total = len(t.Rows())
	if s.Total > 0 {
		s.Position = t.CursorRow() + 1
		s.SelectedRow = t.SelectedRow()
		s.SelectedColumn = t.SelectedColumn()
	}
}

func (m *Model) recordFrame(s *Snapshot) {
	r := m.record
	s.Title = fmt.Sprintf("R[%s]", m.fileTitle())
	s.Columns = r.Columns()
	s.Total = r.Total()
	if s.Total > 0 {
		s.Position = r.Row() + 1
		s.SelectedRow = r.SelectedField()
		s.SelectedColumn = 1
	}
}

func (m *Model) histogramFrame(s *Snapshot) {
	h := m.hist
	s.Title = fmt.Sprintf("H[%s]", h.Name)
	s.Columns = h.Columns()
	s.Total = len(h.Buckets())
	if sel := h.Selected(); sel != view.NoBucket {
		s.Position = sel + 1
		s.SelectedRow = h.SelectedRow()
		s.SelectedColumn = 1
	}
}
