// Package engine holds the state machine of the viewer. A Model owns the
// loaded store, the filter stack and the three projections, and changes
// only through Update.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tv/internal/config"
	"github.com/oakwood-commons/tv/internal/filter"
	"github.com/oakwood-commons/tv/internal/loader"
	"github.com/oakwood-commons/tv/internal/store"
	"github.com/oakwood-commons/tv/internal/view"
	"github.com/oakwood-commons/tv/pkg/logger"
)

// Default terminal size used until the first Resize.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// LoadFunc reads a file into a store.
type LoadFunc func(ctx context.Context, path string, opts loader.Options) (*loader.Result, error)

// Options configure a new Model. Every field is optional.
type Options struct {
	Context     context.Context
	Config      config.Config
	Clipboard   Clipboard
	Logger      logr.Logger
	Load        LoadFunc
	LoadOptions loader.Options
	// HelpText renders the key reference shown by ShowHelp.
	HelpText func() string
	Width    int
	Height   int
}

// Model is the aggregate root of the viewer state.
type Model struct {
	ctx       context.Context
	log       logr.Logger
	cfg       config.Config
	clipboard Clipboard
	load      LoadFunc
	loadOpts  loader.Options
	helpText  func() string
	now       func() time.Time

	store     *store.Store
	info      store.FileInfo
	stack     *filter.Stack
	positions []view.Position
	table     *view.Table
	record    *view.Record
	hist      *view.Histogram

	mode    Mode
	status  Status
	message string

	width, height int
	layout        view.Layout

	revision  uint64
	updatedAt time.Time
	messageAt time.Time
	snap      *Snapshot
}

// New returns an empty model.
func New(opts Options) *Model {
	m := &Model{
		ctx:       opts.Context,
		log:       opts.Logger,
		cfg:       opts.Config,
		clipboard: opts.Clipboard,
		load:      opts.Load,
		loadOpts:  opts.LoadOptions,
		helpText:  opts.HelpText,
		now:       time.Now,
		mode:      TableMode{},
		status:    StatusEmpty,
		width:     opts.Width,
		height:    opts.Height,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.log.GetSink() == nil {
		m.log = *logger.FromContext(m.ctx)
	}
	if m.load == nil {
		m.load = loader.Load
	}
	if m.width <= 0 {
		m.width = DefaultWidth
	}
	if m.height <= 0 {
		m.height = DefaultHeight
	}
	m.store, _ = store.New(nil)
	m.reset()
	m.updatedAt = m.now()
	return m
}

// reset rebuilds every projection from scratch over the current store.
func (m *Model) reset() {
	m.stack = filter.NewStack(store.All(m.store.NumRows()))
	m.positions = nil
	m.table = view.NewTable(m.store, m.stack.Top(), view.TableOptions{
		MaxColumnWidth: m.cfg.Display.MaxColumnWidth,
		ColumnMargin:   m.cfg.Display.ColumnMargin,
		ShowIndex:      m.cfg.Display.ShowIndex,
		FirstRow:       m.info.FirstRow,
	})
	m.record, m.hist = nil, nil
	m.mode = TableMode{}
	m.applyLayout()
}

func (m *Model) applyLayout() {
	m.layout = view.ComputeLayout(m.width, m.height)
	m.table.SetViewport(m.layout.TableWidth, m.layout.TableHeight)
	if m.record != nil {
		m.record.SetViewport(m.layout.TableWidth, m.layout.TableHeight)
	}
	if m.hist != nil {
		m.hist.SetViewport(m.layout.TableWidth, m.layout.TableHeight)
	}
}

func (m *Model) Mode() Mode                 { return m.mode }
func (m *Model) Status() Status             { return m.status }
func (m *Model) Message() string            { return m.message }
func (m *Model) Revision() uint64           { return m.revision }
func (m *Model) Store() *store.Store        { return m.store }
func (m *Model) Info() store.FileInfo       { return m.info }
func (m *Model) Stack() *filter.Stack       { return m.stack }
func (m *Model) Table() *view.Table         { return m.table }
func (m *Model) Record() *view.Record       { return m.record }
func (m *Model) Histogram() *view.Histogram { return m.hist }

// Rows returns the active subset.
func (m *Model) Rows() store.Rows { return m.stack.Top() }

// Quitting reports whether a Quit message has been handled.
func (m *Model) Quitting() bool { return m.status == StatusQuitting }

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.messageAt = m.now()
}

// Update applies one message. Inapplicable messages are ignored. Only a
// failed load returns an error; the model keeps its previous data then.
func (m *Model) Update(msg Msg) error {
	if m.status == StatusQuitting || msg == nil {
		return nil
	}
	changed, err := m.dispatch(msg)
	if changed || err != nil {
		m.revision++
		m.updatedAt = m.now()
		m.snap = nil
	}
	return err
}

func (m *Model) dispatch(msg Msg) (bool, error) {
	switch msg := msg.(type) {
	case Resize:
		if msg.Width <= 0 || msg.Height <= 0 {
			return false, nil
		}
		m.width, m.height = msg.Width, msg.Height
		m.applyLayout()
		return true, nil
	case Quit:
		m.status = StatusQuitting
		return true, nil
	case LoadFile:
		return m.loadFile(msg.Path)
	}

	switch mode := m.mode.(type) {
	case TableMode:
		return m.updateTable(msg), nil
	case RecordMode:
		return m.updateRecord(msg), nil
	case HistogramMode:
		return m.updateHistogram(msg), nil
	case PopupMode:
		return m.updatePopup(mode, msg), nil
	case CommandMode:
		return m.updateCommand(mode, msg)
	}
	return false, nil
}

// updateOverlay handles the messages every projection shares.
func (m *Model) updateOverlay(msg Msg) bool {
	switch msg := msg.(type) {
	case EnterCommand:
		m.mode = CommandMode{Prev: baseMode(m.mode), Command: msg.Kind}
		return true
	case EnterPopup:
		m.mode = PopupMode{Prev: baseMode(m.mode), Text: msg.Text}
		return true
	case ShowHelp:
		m.mode = PopupMode{Prev: baseMode(m.mode), Text: m.help()}
		return true
	case ShowFunctions:
		m.mode = PopupMode{Prev: baseMode(m.mode), Text: functionsText()}
		return true
	}
	return false
}

func (m *Model) ready() bool { return m.status == StatusReady }

func (m *Model) updateTable(msg Msg) bool {
	if m.updateOverlay(msg) {
		return true
	}
	if !m.ready() {
		return false
	}
	t := m.table
	switch msg := msg.(type) {
	case MoveUp:
		t.MoveRows(-1)
	case MoveDown:
		t.MoveRows(1)
	case MoveLeft:
		t.MoveColumns(-1)
	case MoveRight:
		t.MoveColumns(1)
	case PageUp:
		t.Page(-1)
	case PageDown:
		t.Page(1)
	case JumpFirst:
		t.FirstRow()
	case JumpLast:
		t.LastRow()
	case JumpFirstColumn:
		t.FirstColumn()
	case JumpLastColumn:
		t.LastColumn()
	case EnterRecord, Enter:
		return m.enterRecord()
	case EnterHistogram:
		return m.enterHistogram()
	case Escape, PopFilter:
		return m.popFilter()
	case PushFilter:
		if msg.Predicate == nil {
			return false
		}
		m.pushFilter(msg.Predicate)
	case ToggleIndex:
		t.ToggleIndex()
	case ExpandColumn:
		t.Expand()
	case CollapseColumn:
		t.Collapse()
	case Search:
		m.search(msg)
	case NextMatch:
		m.nextMatch(1)
	case PrevMatch:
		m.nextMatch(-1)
	case SortColumn:
		m.sort(msg.Ascending)
	case CopyCell:
		if len(t.Rows()) == 0 {
			return false
		}
		m.copyText(m.store.RawCell(t.CursorColumn(), t.Rows()[t.CursorRow()]), "cell")
	case CopyRow:
		if len(t.Rows()) == 0 {
			return false
		}
		m.copyText(csvRow(m.store.RawRow(t.Rows()[t.CursorRow()])), "row")
	default:
		return false
	}
	return true
}

func (m *Model) enterRecord() bool {
	if len(m.table.Rows()) == 0 || m.store.NumColumns() == 0 {
		return false
	}
	m.record = view.NewRecord(m.store, m.table.Rows(), m.table.CursorRow(),
		m.layout.TableWidth, m.layout.TableHeight)
	m.mode = RecordMode{}
	return true
}

func (m *Model) enterHistogram() bool {
	if m.store.NumColumns() == 0 {
		return false
	}
	col := m.table.CursorColumn()
	m.hist = view.NewHistogram(col, m.store.Column(col).Name, m.table.Histogram(col),
		m.layout.TableWidth, m.layout.TableHeight)
	m.mode = HistogramMode{}
	return true
}

func (m *Model) updateRecord(msg Msg) bool {
	if m.updateOverlay(msg) {
		return true
	}
	if !m.ready() {
		return false
	}
	r := m.record
	switch msg.(type) {
	case MoveUp:
		r.MoveRow(-1)
	case MoveDown:
		r.MoveRow(1)
	case MoveLeft:
		r.MoveField(-1)
	case MoveRight:
		r.MoveField(1)
	case PageUp:
		r.PageField(-1)
	case PageDown:
		r.PageField(1)
	case JumpFirst:
		r.FirstRow()
	case JumpLast:
		r.LastRow()
	case Escape:
		m.table.SelectCell(r.Row(), m.table.CursorColumn())
		m.record = nil
		m.mode = TableMode{}
	case CopyCell:
		m.copyText(r.Value(), "field")
	case CopyRow:
		if row := r.OriginalRow(); row >= 0 {
			m.copyText(csvRow(m.store.RawRow(row)), "row")
		}
	default:
		return false
	}
	return true
}

func (m *Model) updateHistogram(msg Msg) bool {
	if m.updateOverlay(msg) {
		return true
	}
	if !m.ready() {
		return false
	}
	h := m.hist
	switch msg.(type) {
	case MoveUp:
		h.Move(-1)
	case MoveDown:
		h.Move(1)
	case PageUp:
		h.Page(-1)
	case PageDown:
		h.Page(1)
	case JumpFirst:
		h.First()
	case JumpLast:
		h.Last()
	case Escape:
		m.leaveHistogram()
	case Enter:
		if h.Selected() == view.NoBucket {
			return false
		}
		m.leaveHistogram()
	case CopyCell:
		b, ok := h.SelectedBucket()
		if !ok {
			return false
		}
		m.copyText(b.Value, "value")
	default:
		return false
	}
	return true
}

// leaveHistogram returns to the table, filtering it to the selected bucket
// when there is one.
func (m *Model) leaveHistogram() {
	h := m.hist
	m.hist = nil
	m.mode = TableMode{}
	if b, ok := h.SelectedBucket(); ok {
		m.pushFilter(&filter.InBucket{Column: h.Column, Name: h.Name, Value: b.Value})
	}
}

func (m *Model) updatePopup(mode PopupMode, msg Msg) bool {
	switch msg.(type) {
	case Escape, Enter, CancelCommand:
		m.mode = mode.Prev
		return true
	case ShowHelp:
		return m.updateOverlay(msg)
	}
	return false
}

func (m *Model) help() string {
	if m.helpText == nil {
		return "No help available."
	}
	return m.helpText()
}

// loadFile replaces the store with the contents of path. On failure the
// previous data, projections and status stay in place.
func (m *Model) loadFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	prev := m.status
	m.status = StatusLoading
	lgr := m.log.WithValues(logger.PathKey, path)
	lgr.V(1).Info("load requested")

	res, err := m.load(logger.WithLogger(m.ctx, &lgr), path, m.loadOpts)
	if err != nil {
		m.status = prev
		m.setMessage(err.Error())
		lgr.Error(err, "load failed")
		return true, err
	}

	m.status = StatusProcessing
	m.store, m.info = res.Store, res.Info
	m.reset()
	m.status = StatusReady
	m.setMessage(fmt.Sprintf("Loaded %d rows × %d columns in %dms",
		m.info.Rows, m.info.Columns, m.info.LoadDuration.Milliseconds()))
	return true, nil
}

// pushFilter narrows the active subset and remembers the cursor so popping
// restores it.
func (m *Model) pushFilter(p filter.Predicate) {
	rows := filter.Apply(m.store, m.stack.Top(), p)
	m.pushRows(p, rows)
	if len(rows) == 0 {
		m.setMessage("no matches")
		return
	}
	m.setMessage(fmt.Sprintf("%s: %d rows", m.stack.Describe(), len(rows)))
}

func (m *Model) pushRows(step filter.Step, rows store.Rows) {
	pos := m.table.Position()
	m.positions = append(m.positions, pos)
	m.stack.Push(step, rows)
	m.table.SetRows(rows)
	m.table.Restore(view.Position{Column: pos.Column, ColumnOffset: pos.ColumnOffset})
	m.log.V(1).Info("filter pushed", "step", step.String(), "rows", len(rows), "depth", m.stack.Len())
}

func (m *Model) popFilter() bool {
	if !m.stack.Pop() {
		return false
	}
	m.table.SetRows(m.stack.Top())
	if n := len(m.positions); n > 0 {
		m.table.Restore(m.positions[n-1])
		m.positions = m.positions[:n-1]
	}
	m.setMessage(m.stack.Describe())
	return true
}

func (m *Model) sort(ascending bool) {
	if m.store.NumColumns() == 0 {
		return
	}
	col := m.table.CursorColumn()
	step := filter.SortStep{Column: col, Name: m.store.Column(col).Name, Ascending: ascending}
	m.pushRows(step, filter.Sort(m.store, m.stack.Top(), col, ascending))
	m.setMessage(step.String())
}

func (m *Model) searchColumns(currentOnly bool) []int {
	switch {
	case m.store.NumColumns() == 0:
		return nil
	case currentOnly:
		return []int{m.table.CursorColumn()}
	case m.cfg.Search.Scope == config.ScopeVisible:
		return m.table.VisibleColumns()
	}
	cols := make([]int, m.store.NumColumns())
	for i := range cols {
		cols[i] = i
	}
	return cols
}

func (m *Model) search(msg Search) {
	q := filter.Query{Text: msg.Query, Mode: msg.Mode, IgnoreCase: m.cfg.Search.IgnoreCase}
	hits, err := filter.Search(m.store, m.table.Rows(), m.searchColumns(msg.CurrentColumnOnly), q)
	if err != nil {
		m.setMessage(fmt.Sprintf("invalid search: %v", err))
		return
	}
	m.table.SetHits(hits)
	if hits.Len() == 0 {
		m.setMessage("Found no matches!")
		return
	}
	h, _ := hits.Seek(m.table.CursorRow())
	m.table.SelectCell(h.Row, h.Column)
	m.setMessage(fmt.Sprintf("Found %d results", hits.Len()))
}

func (m *Model) nextMatch(step int) {
	hits := m.table.Hits()
	if hits.Len() == 0 {
		m.setMessage("no matches")
		return
	}
	var h filter.Hit
	if step < 0 {
		h, _ = hits.Prev()
	} else {
		h, _ = hits.Next()
	}
	m.table.SelectCell(h.Row, h.Column)
	m.setMessage(fmt.Sprintf("Search result %d/%d", hits.Index()+1, hits.Len()))
}
