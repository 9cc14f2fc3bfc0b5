package engine

import "github.com/oakwood-commons/tv/internal/filter"

// Msg is one discrete input to Update.
type Msg interface{ isMsg() }

// Navigation, routed to the active projection.
type (
	MoveUp          struct{}
	MoveDown        struct{}
	MoveLeft        struct{}
	MoveRight       struct{}
	PageUp          struct{}
	PageDown        struct{}
	JumpFirst       struct{}
	JumpLast        struct{}
	JumpFirstColumn struct{}
	JumpLastColumn  struct{}
)

// Mode switches.
type (
	EnterRecord    struct{}
	EnterHistogram struct{}
	EnterPopup     struct{ Text string }
	ShowHelp       struct{}
	ShowFunctions  struct{}
	EnterCommand   struct{ Kind CommandKind }
	Escape         struct{}
	Enter          struct{}
)

// Data actions.
type (
	LoadFile       struct{ Path string }
	ToggleIndex    struct{}
	ExpandColumn   struct{}
	CollapseColumn struct{}
	PushFilter     struct{ Predicate filter.Predicate }
	PopFilter      struct{}
	Search         struct {
		Query             string
		Mode              filter.SearchMode
		CurrentColumnOnly bool
	}
	NextMatch     struct{}
	PrevMatch     struct{}
	SortColumn    struct{ Ascending bool }
	CopyCell      struct{}
	CopyRow       struct{}
	SubmitCommand struct{ Text string }
	CancelCommand struct{}
)

// Lifecycle.
type (
	Resize struct{ Width, Height int }
	Quit   struct{}
)

func (MoveUp) isMsg()          {}
func (MoveDown) isMsg()        {}
func (MoveLeft) isMsg()        {}
func (MoveRight) isMsg()       {}
func (PageUp) isMsg()          {}
func (PageDown) isMsg()        {}
func (JumpFirst) isMsg()       {}
func (JumpLast) isMsg()        {}
func (JumpFirstColumn) isMsg() {}
func (JumpLastColumn) isMsg()  {}
func (EnterRecord) isMsg()     {}
func (EnterHistogram) isMsg()  {}
func (EnterPopup) isMsg()      {}
func (ShowHelp) isMsg()        {}
func (ShowFunctions) isMsg()   {}
func (EnterCommand) isMsg()    {}
func (Escape) isMsg()          {}
func (Enter) isMsg()           {}
func (LoadFile) isMsg()        {}
func (ToggleIndex) isMsg()     {}
func (ExpandColumn) isMsg()    {}
func (CollapseColumn) isMsg()  {}
func (PushFilter) isMsg()      {}
func (PopFilter) isMsg()       {}
func (Search) isMsg()          {}
func (NextMatch) isMsg()       {}
func (PrevMatch) isMsg()       {}
func (SortColumn) isMsg()      {}
func (CopyCell) isMsg()        {}
func (CopyRow) isMsg()         {}
func (SubmitCommand) isMsg()   {}
func (CancelCommand) isMsg()   {}
func (Resize) isMsg()          {}
func (Quit) isMsg()            {}
