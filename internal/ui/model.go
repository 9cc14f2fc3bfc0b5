// Package ui is the interactive shell around the engine: it translates key
// presses into engine messages, buffers command-line input and draws
// snapshots with lipgloss.
package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tv/internal/engine"
	"github.com/oakwood-commons/tv/pkg/logger"
)

// Options configures a Model.
type Options struct {
	Keys    *Keymap // nil uses the vim keymap
	Theme   *Theme  // nil uses DefaultTheme
	NoColor bool
	Logger  logr.Logger
}

// Model is the bubbletea model driving an engine.Model.
type Model struct {
	engine  *engine.Model
	keys    *Keymap
	styles  styles
	noColor bool
	input   textinput.Model
	log     logr.Logger

	popupText   string
	popupOffset int
}

var _ tea.Model = (*Model)(nil)

// NewModel wraps e.
func NewModel(e *engine.Model, opts Options) *Model {
	keys := opts.Keys
	if keys == nil {
		keys, _ = NewKeymap("", nil)
	}
	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1000
	ti.SetWidth(max(e.Snapshot().Layout.Width-20, 10))

	return &Model{
		engine:  e,
		keys:    keys,
		styles:  newStyles(th, opts.NoColor),
		noColor: opts.NoColor,
		input:   ti,
		log:     log.WithName("ui"),
	}
}

func (m *Model) Engine() *engine.Model { return m.engine }
func (m *Model) Keys() *Keymap         { return m.keys }

// Input is the text typed on the command line so far.
func (m *Model) Input() string { return m.input.Value() }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.send(engine.Resize{Width: msg.Width, Height: msg.Height})
		m.input.SetWidth(max(msg.Width-20, 10))
	case tea.KeyPressMsg:
		cmd = m.handleKey(msg)
	}
	m.syncPopup()
	if m.engine.Quitting() {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	m.log.V(1).Info("key", logger.KeyKey, key)
	if key == "ctrl+c" {
		m.send(engine.Quit{})
		return nil
	}

	switch m.engine.Mode().(type) {
	case engine.CommandMode:
		return m.handleInputKey(msg, key)
	case engine.PopupMode:
		m.handlePopupKey(key)
		return nil
	}

	em, ok := m.keys.Resolve(key)
	if !ok {
		return nil
	}
	m.send(em)
	if _, ok := m.engine.Mode().(engine.CommandMode); ok {
		m.input.Reset()
		return m.input.Focus()
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	switch key {
	case "enter":
		text := m.input.Value()
		m.closeInput()
		m.send(engine.SubmitCommand{Text: text})
		return nil
	case "esc":
		m.closeInput()
		m.send(engine.CancelCommand{})
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) closeInput() {
	m.input.Blur()
	m.input.Reset()
}

// handlePopupKey scrolls the popup; any key that would leave a view closes it.
func (m *Model) handlePopupKey(key string) {
	s := m.engine.Snapshot()
	lines := strings.Count(strings.TrimRight(s.Popup, "\n"), "\n") + 1
	window := max(s.Layout.TableHeight-2, 1)
	offset := clampOffset(m.popupOffset, lines, window)

	switch m.keys.Action(key) {
	case ActionDown:
		offset++
	case ActionUp:
		offset--
	case ActionPageDown:
		offset += window
	case ActionPageUp:
		offset -= window
	case ActionFirstRow:
		offset = 0
	case ActionLastRow:
		offset = lines
	case ActionEscape, ActionEnter, ActionHelp, ActionQuit:
		m.send(engine.Escape{})
		return
	}
	m.popupOffset = clampOffset(offset, lines, window)
}

// syncPopup resets the scroll offset whenever a different popup opens.
func (m *Model) syncPopup() {
	if p := m.engine.Snapshot().Popup; p != m.popupText {
		m.popupText = p
		m.popupOffset = 0
	}
}

func (m *Model) send(msg engine.Msg) {
	if err := m.engine.Update(msg); err != nil {
		m.log.V(1).Info("update failed", "error", err.Error())
	}
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.Frame())
	v.AltScreen = true
	return v
}

// Frame renders the current snapshot.
func (m *Model) Frame() string {
	s := m.engine.Snapshot()
	offset := m.popupOffset
	if s.Popup != m.popupText {
		offset = 0
	}
	input := ""
	if s.Prompt != "" {
		input = m.input.View()
	}
	return renderFrame(s, m.styles, input, offset)
}

// Text renders the current snapshot without escape sequences.
func (m *Model) Text() string {
	return ansi.Strip(m.Frame())
}
