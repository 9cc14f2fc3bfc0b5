package engine

// Status tells whether the model accepts input and what the status line
// reports. It is independent of the active Mode.
type Status int

const (
	StatusEmpty Status = iota
	StatusReady
	StatusLoading
	StatusProcessing
	StatusQuitting
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusLoading:
		return "loading"
	case StatusProcessing:
		return "processing"
	case StatusQuitting:
		return "quitting"
	default:
		return "empty"
	}
}

// MarshalText renders the status by name in JSON snapshots.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ModeKind names the concrete type of a Mode.
type ModeKind int

const (
	ModeTable ModeKind = iota
	ModeRecord
	ModeHistogram
	ModePopup
	ModeCommand
)

func (k ModeKind) String() string {
	switch k {
	case ModeRecord:
		return "record"
	case ModeHistogram:
		return "histogram"
	case ModePopup:
		return "popup"
	case ModeCommand:
		return "command"
	default:
		return "table"
	}
}

// MarshalText renders the mode by name in JSON snapshots.
func (k ModeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Mode is the active interaction surface. The set of modes is closed.
type Mode interface {
	Kind() ModeKind
	isMode()
}

type TableMode struct{}

type RecordMode struct{}

type HistogramMode struct{}

// PopupMode shows a text overlay on top of Prev.
type PopupMode struct {
	Prev Mode
	Text string
}

// CommandMode collects a line of input for Command on top of Prev.
type CommandMode struct {
	Prev    Mode
	Command CommandKind
}

func (TableMode) Kind() ModeKind     { return ModeTable }
func (RecordMode) Kind() ModeKind    { return ModeRecord }
func (HistogramMode) Kind() ModeKind { return ModeHistogram }
func (PopupMode) Kind() ModeKind     { return ModePopup }
func (CommandMode) Kind() ModeKind   { return ModeCommand }

func (TableMode) isMode()     {}
func (RecordMode) isMode()    {}
func (HistogramMode) isMode() {}
func (PopupMode) isMode()     {}
func (CommandMode) isMode()   {}

// baseMode unwraps overlays down to the projection underneath.
func baseMode(m Mode) Mode {
	switch m := m.(type) {
	case PopupMode:
		return baseMode(m.Prev)
	case CommandMode:
		return baseMode(m.Prev)
	case nil:
		return TableMode{}
	default:
		return m
	}
}

// CommandKind selects what a submitted command line does.
type CommandKind int

const (
	CommandRaw CommandKind = iota
	CommandSearch
	CommandSearchRegex
	CommandSearchColumn
	CommandFilter
	CommandFilterRegex
	CommandExpression
	CommandOpen
)

func (k CommandKind) String() string {
	switch k {
	case CommandSearch:
		return "search"
	case CommandSearchRegex:
		return "search-regex"
	case CommandSearchColumn:
		return "search-column"
	case CommandFilter:
		return "filter"
	case CommandFilterRegex:
		return "filter-regex"
	case CommandExpression:
		return "expression"
	case CommandOpen:
		return "open"
	default:
		return "raw"
	}
}

// MarshalText renders the command kind by name in JSON snapshots.
func (k CommandKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Prompt is shown in front of the input line.
func (k CommandKind) Prompt() string {
	switch k {
	case CommandSearch:
		return "/"
	case CommandSearchRegex:
		return "regex/"
	case CommandSearchColumn:
		return "column/"
	case CommandFilter:
		return "filter: "
	case CommandFilterRegex:
		return "filter regex: "
	case CommandExpression:
		return "where: "
	case CommandOpen:
		return "open: "
	default:
		return ":"
	}
}
