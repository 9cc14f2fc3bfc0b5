package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oakwood-commons/tv/internal/config"
	"github.com/oakwood-commons/tv/internal/engine"
)

// Action names a bindable command. Config files refer to actions by these
// names.
type Action string

const (
	ActionNone         Action = ""
	ActionUp           Action = "up"
	ActionDown         Action = "down"
	ActionLeft         Action = "left"
	ActionRight        Action = "right"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionFirstRow     Action = "first_row"
	ActionLastRow      Action = "last_row"
	ActionFirstColumn  Action = "first_column"
	ActionLastColumn   Action = "last_column"
	ActionEnter        Action = "enter"
	ActionEscape       Action = "escape"
	ActionRecord       Action = "record"
	ActionHistogram    Action = "histogram"
	ActionExpand       Action = "expand"
	ActionCollapse     Action = "collapse"
	ActionIndex        Action = "index"
	ActionSearch       Action = "search"
	ActionSearchRegex  Action = "search_regex"
	ActionSearchColumn Action = "search_column"
	ActionNextMatch    Action = "next_match"
	ActionPrevMatch    Action = "prev_match"
	ActionFilter       Action = "filter"
	ActionFilterRegex  Action = "filter_regex"
	ActionWhere        Action = "where"
	ActionPop          Action = "pop"
	ActionSortAsc      Action = "sort_asc"
	ActionSortDesc     Action = "sort_desc"
	ActionCopyCell     Action = "copy_cell"
	ActionCopyRow      Action = "copy_row"
	ActionCommand      Action = "command"
	ActionOpen         Action = "open"
	ActionHelp         Action = "help"
	ActionFunctions    Action = "functions"
	ActionQuit         Action = "quit"
	ActionPendingG     Action = "pending_g" // first key of gg
)

// VimKeyBindings is the default vim keymap.
var VimKeyBindings = map[string]Action{
	"j":         ActionDown,
	"down":      ActionDown,
	"k":         ActionUp,
	"up":        ActionUp,
	"h":         ActionLeft,
	"left":      ActionLeft,
	"l":         ActionRight,
	"right":     ActionRight,
	"J":         ActionPageDown,
	"pgdown":    ActionPageDown,
	"ctrl+f":    ActionPageDown,
	"K":         ActionPageUp,
	"pgup":      ActionPageUp,
	"ctrl+b":    ActionPageUp,
	"g":         ActionPendingG,
	"home":      ActionFirstRow,
	"G":         ActionLastRow,
	"end":       ActionLastRow,
	"0":         ActionFirstColumn,
	"^":         ActionFirstColumn,
	"$":         ActionLastColumn,
	"enter":     ActionEnter,
	"H":         ActionHistogram,
	"+":         ActionExpand,
	"-":         ActionCollapse,
	"I":         ActionIndex,
	"/":         ActionSearch,
	"r":         ActionSearchRegex,
	`\`:         ActionSearchColumn,
	"n":         ActionNextMatch,
	"N":         ActionPrevMatch,
	"f":         ActionFilter,
	"F":         ActionFilterRegex,
	"w":         ActionWhere,
	"s":         ActionSortAsc,
	"S":         ActionSortDesc,
	"y":         ActionCopyCell,
	"Y":         ActionCopyRow,
	":":         ActionCommand,
	"o":         ActionOpen,
	"?":         ActionHelp,
	"f1":        ActionHelp,
	"esc":       ActionEscape,
	"backspace": ActionPop,
	"q":         ActionQuit,
	"ctrl+c":    ActionQuit,
}

// FunctionKeyBindings uses function and modifier keys only, leaving printable
// keys free.
var FunctionKeyBindings = map[string]Action{
	"down":         ActionDown,
	"up":           ActionUp,
	"left":         ActionLeft,
	"right":        ActionRight,
	"pgdown":       ActionPageDown,
	"pgup":         ActionPageUp,
	"home":         ActionFirstRow,
	"end":          ActionLastRow,
	"ctrl+left":    ActionFirstColumn,
	"ctrl+right":   ActionLastColumn,
	"enter":        ActionEnter,
	"f1":           ActionHelp,
	"f2":           ActionFilter,
	"shift+f2":     ActionFilterRegex,
	"f3":           ActionSearch,
	"shift+f3":     ActionSearchColumn,
	"ctrl+r":       ActionSearchRegex,
	"ctrl+n":       ActionNextMatch,
	"ctrl+p":       ActionPrevMatch,
	"f4":           ActionWhere,
	"f5":           ActionHistogram,
	"f6":           ActionSortAsc,
	"shift+f6":     ActionSortDesc,
	"f7":           ActionIndex,
	"f8":           ActionExpand,
	"shift+f8":     ActionCollapse,
	"f9":           ActionCommand,
	"ctrl+o":       ActionOpen,
	"ctrl+y":       ActionCopyCell,
	"ctrl+shift+y": ActionCopyRow,
	"esc":          ActionEscape,
	"backspace":    ActionPop,
	"f10":          ActionQuit,
	"ctrl+c":       ActionQuit,
}

// Keymap translates key strings into engine messages.
type Keymap struct {
	mode     string
	bindings map[string]Action
	pending  string
}

// NewKeymap copies the default bindings of mode and applies overrides, a map
// of key to action name. An override bound to "none" unbinds the key.
func NewKeymap(mode string, overrides map[string]string) (*Keymap, error) {
	var defaults map[string]Action
	switch mode {
	case config.KeyModeVim, "":
		mode = config.KeyModeVim
		defaults = VimKeyBindings
	case config.KeyModeFunction:
		defaults = FunctionKeyBindings
	default:
		return nil, fmt.Errorf("unknown key mode %q", mode)
	}

	k := &Keymap{mode: mode, bindings: make(map[string]Action, len(defaults)+len(overrides))}
	for key, a := range defaults {
		k.bindings[key] = a
	}
	for key, name := range overrides {
		key = strings.TrimSpace(key)
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "none" {
			delete(k.bindings, key)
			continue
		}
		a := Action(name)
		if _, ok := actionMsg(a); !ok && a != ActionPendingG {
			return nil, fmt.Errorf("key %q: unknown action %q", key, name)
		}
		k.bindings[key] = a
	}
	return k, nil
}

func (k *Keymap) Mode() string { return k.mode }

// Action returns the action bound to key, resolving the gg sequence. The
// first g of gg yields ActionNone.
func (k *Keymap) Action(key string) Action {
	if k.pending == "g" {
		k.pending = ""
		if key == "g" {
			return ActionFirstRow
		}
	}
	a := k.bindings[key]
	if a == ActionPendingG {
		k.pending = "g"
		return ActionNone
	}
	return a
}

// Resolve maps key to an engine message.
func (k *Keymap) Resolve(key string) (engine.Msg, bool) {
	return actionMsg(k.Action(key))
}

// Keys lists the keys bound to a, sorted.
func (k *Keymap) Keys(a Action) []string {
	var keys []string
	for key, bound := range k.bindings {
		if bound == a {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func actionMsg(a Action) (engine.Msg, bool) {
	switch a {
	case ActionUp:
		return engine.MoveUp{}, true
	case ActionDown:
		return engine.MoveDown{}, true
	case ActionLeft:
		return engine.MoveLeft{}, true
	case ActionRight:
		return engine.MoveRight{}, true
	case ActionPageUp:
		return engine.PageUp{}, true
	case ActionPageDown:
		return engine.PageDown{}, true
	case ActionFirstRow:
		return engine.JumpFirst{}, true
	case ActionLastRow:
		return engine.JumpLast{}, true
	case ActionFirstColumn:
		return engine.JumpFirstColumn{}, true
	case ActionLastColumn:
		return engine.JumpLastColumn{}, true
	case ActionEnter:
		return engine.Enter{}, true
	case ActionEscape:
		return engine.Escape{}, true
	case ActionRecord:
		return engine.EnterRecord{}, true
	case ActionHistogram:
		return engine.EnterHistogram{}, true
	case ActionExpand:
		return engine.ExpandColumn{}, true
	case ActionCollapse:
		return engine.CollapseColumn{}, true
	case ActionIndex:
		return engine.ToggleIndex{}, true
	case ActionSearch:
		return engine.EnterCommand{Kind: engine.CommandSearch}, true
	case ActionSearchRegex:
		return engine.EnterCommand{Kind: engine.CommandSearchRegex}, true
	case ActionSearchColumn:
		return engine.EnterCommand{Kind: engine.CommandSearchColumn}, true
	case ActionNextMatch:
		return engine.NextMatch{}, true
	case ActionPrevMatch:
		return engine.PrevMatch{}, true
	case ActionFilter:
		return engine.EnterCommand{Kind: engine.CommandFilter}, true
	case ActionFilterRegex:
		return engine.EnterCommand{Kind: engine.CommandFilterRegex}, true
	case ActionWhere:
		return engine.EnterCommand{Kind: engine.CommandExpression}, true
	case ActionPop:
		return engine.PopFilter{}, true
	case ActionSortAsc:
		return engine.SortColumn{Ascending: true}, true
	case ActionSortDesc:
		return engine.SortColumn{Ascending: false}, true
	case ActionCopyCell:
		return engine.CopyCell{}, true
	case ActionCopyRow:
		return engine.CopyRow{}, true
	case ActionCommand:
		return engine.EnterCommand{Kind: engine.CommandRaw}, true
	case ActionOpen:
		return engine.EnterCommand{Kind: engine.CommandOpen}, true
	case ActionHelp:
		return engine.ShowHelp{}, true
	case ActionFunctions:
		return engine.ShowFunctions{}, true
	case ActionQuit:
		return engine.Quit{}, true
	}
	return nil, false
}

