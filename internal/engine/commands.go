package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/tv/internal/cel"
	"github.com/oakwood-commons/tv/internal/filter"
)

func (m *Model) updateCommand(mode CommandMode, msg Msg) (bool, error) {
	switch msg := msg.(type) {
	case Escape, CancelCommand:
		m.mode = mode.Prev
		return true, nil
	case SubmitCommand:
		m.mode = mode.Prev
		return true, m.runCommand(mode.Command, strings.TrimSpace(msg.Text))
	}
	return false, nil
}

// runCommand executes a finished input line. Commands that act on the table
// leave Record and Histogram mode.
func (m *Model) runCommand(kind CommandKind, text string) error {
	if text == "" {
		return nil
	}
	m.log.V(1).Info("command", "kind", kind.String(), "text", text)
	if kind == CommandOpen {
		_, err := m.loadFile(text)
		return err
	}
	if kind == CommandRaw {
		return m.runRaw(text)
	}
	if !m.ready() {
		return nil
	}

	m.toTable()
	col := m.table.CursorColumn()
	switch kind {
	case CommandSearch:
		m.search(Search{Query: text, Mode: filter.SearchSubstring})
	case CommandSearchRegex:
		m.search(Search{Query: text, Mode: filter.SearchRegex})
	case CommandSearchColumn:
		m.search(Search{Query: text, Mode: filter.SearchSubstring, CurrentColumnOnly: true})
	case CommandFilter:
		if m.store.NumColumns() > 0 {
			m.pushFilter(filter.NewSubstring(col, m.store.Column(col).Name, text, m.cfg.Search.IgnoreCase))
		}
	case CommandFilterRegex:
		if m.store.NumColumns() == 0 {
			return nil
		}
		p, err := filter.NewRegex(col, m.store.Column(col).Name, text)
		if err != nil {
			m.setMessage(fmt.Sprintf("invalid pattern: %v", err))
			return nil
		}
		m.pushFilter(p)
	case CommandExpression:
		m.filterExpression(text)
	}
	return nil
}

func (m *Model) filterExpression(source string) {
	p, err := filter.NewExpression(m.store, source)
	if err != nil {
		m.setMessage(fmt.Sprintf("invalid expression: %v", err))
		return
	}
	m.pushFilter(p)
}

// toTable closes Record or Histogram mode, keeping the record's row selected.
func (m *Model) toTable() {
	if _, ok := m.mode.(RecordMode); ok && m.record != nil {
		m.table.SelectCell(m.record.Row(), m.table.CursorColumn())
	}
	m.record, m.hist = nil, nil
	m.mode = TableMode{}
}

// runRaw executes a ':' command line.
func (m *Model) runRaw(line string) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	if n, err := strconv.Atoi(name); err == nil {
		if !m.ready() {
			return nil
		}
		m.toTable()
		m.table.SelectCell(n-1, m.table.CursorColumn())
		return nil
	}

	switch name {
	case "q", "q!", "quit", "exit":
		m.status = StatusQuitting
	case "e", "o", "open", "edit":
		_, err := m.loadFile(arg)
		return err
	case "help", "h":
		m.mode = PopupMode{Prev: baseMode(m.mode), Text: m.help()}
	case "functions", "fn":
		m.mode = PopupMode{Prev: baseMode(m.mode), Text: functionsText()}
	case "filter", "where":
		if m.ready() && arg != "" {
			m.toTable()
			m.filterExpression(arg)
		}
	case "sort":
		if !m.ready() {
			return nil
		}
		switch arg {
		case "", "asc":
			m.toTable()
			m.sort(true)
		case "desc":
			m.toTable()
			m.sort(false)
		default:
			m.setMessage(fmt.Sprintf("sort: expected asc or desc, got %q", arg))
		}
	case "pop":
		if m.ready() {
			m.toTable()
			m.popFilter()
		}
	case "index":
		if m.ready() {
			m.toTable()
			m.table.ToggleIndex()
		}
	case "info":
		m.mode = PopupMode{Prev: baseMode(m.mode), Text: m.infoText()}
	default:
		m.setMessage(fmt.Sprintf("unknown command: %s", name))
	}
	return nil
}

func functionsText() string {
	fns, err := cel.Functions()
	if err != nil {
		return err.Error()
	}
	return "Expression functions\n\n" + strings.Join(fns, "\n")
}

func (m *Model) infoText() string {
	if m.info.Path == "" {
		return "No file loaded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "File:        %s\n", m.info.Path)
	fmt.Fprintf(&b, "Format:      %s\n", m.info.Format)
	fmt.Fprintf(&b, "Compression: %s\n", m.info.Compression)
	fmt.Fprintf(&b, "Size:        %d bytes\n", m.info.Size)
	fmt.Fprintf(&b, "Rows:        %d of %d\n", m.info.Rows, m.info.TotalRows)
	fmt.Fprintf(&b, "Columns:     %d\n", m.info.Columns)
	fmt.Fprintf(&b, "Loaded in:   %s\n", m.info.LoadDuration)
	if steps := m.stack.Steps(); len(steps) > 0 {
		b.WriteString("\nFilters:\n")
		for i, s := range steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
	}
	b.WriteString("\nColumns:\n")
	for _, c := range m.store.Columns() {
		fmt.Fprintf(&b, "  %s (%s)\n", c.Name, c.Kind)
	}
	return strings.TrimRight(b.String(), "\n")
}
