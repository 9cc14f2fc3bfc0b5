package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys feeds simulated key presses to m. Each token mixes literal
// text with vim-style keys such as <Esc>, <CR>, <C-c> or <S-F2>.
func ApplyStartupKeys(m *Model, keys []string) {
	if m == nil {
		return
	}
	for _, msg := range StartupKeys(keys) {
		m.Update(msg)
	}
}

// StartupKeys parses tokens into key presses. A leading backslash forces
// the rest of a token to be literal text.
func StartupKeys(keys []string) []tea.KeyPressMsg {
	var msgs []tea.KeyPressMsg
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(token, `\`); ok {
			msgs = append(msgs, literalKeys(rest)...)
			continue
		}
		for _, seg := range parseTokenSegments(token) {
			if !seg.isKey {
				msgs = append(msgs, literalKeys(seg.text)...)
				continue
			}
			if msg, ok := keyMsgFromToken(seg.text); ok {
				msgs = append(msgs, msg)
			} else {
				msgs = append(msgs, literalKeys(seg.text)...)
			}
		}
	}
	return msgs
}

func literalKeys(text string) []tea.KeyPressMsg {
	msgs := make([]tea.KeyPressMsg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return msgs
}

type tokenSegment struct {
	text  string
	isKey bool
}

// parseTokenSegments splits "<F1>abc" into the key <F1> and the text "abc".
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for remaining != "" {
		start := strings.Index(remaining, "<")
		if start == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if start > 0 {
			segments = append(segments, tokenSegment{text: remaining[:start]})
		}
		end := strings.Index(remaining[start:], ">")
		if end <= 1 {
			// "<" alone or "<>" is text
			segments = append(segments, tokenSegment{text: remaining[start : start+1]})
			remaining = remaining[start+1:]
			continue
		}
		segments = append(segments, tokenSegment{text: remaining[start : start+end+1], isKey: true})
		remaining = remaining[start+end+1:]
	}
	return segments
}

var namedKeys = map[string]rune{
	"esc":       tea.KeyEscape,
	"escape":    tea.KeyEscape,
	"cr":        tea.KeyEnter,
	"enter":     tea.KeyEnter,
	"return":    tea.KeyEnter,
	"tab":       tea.KeyTab,
	"bs":        tea.KeyBackspace,
	"backspace": tea.KeyBackspace,
	"del":       tea.KeyDelete,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"pgup":      tea.KeyPgUp,
	"pageup":    tea.KeyPgUp,
	"pgdn":      tea.KeyPgDown,
	"pgdown":    tea.KeyPgDown,
	"pagedown":  tea.KeyPgDown,
	"f1":        tea.KeyF1,
	"f2":        tea.KeyF2,
	"f3":        tea.KeyF3,
	"f4":        tea.KeyF4,
	"f5":        tea.KeyF5,
	"f6":        tea.KeyF6,
	"f7":        tea.KeyF7,
	"f8":        tea.KeyF8,
	"f9":        tea.KeyF9,
	"f10":       tea.KeyF10,
	"f11":       tea.KeyF11,
	"f12":       tea.KeyF12,
}

// keyMsgFromToken parses one <...> token. Modifier prefixes C-, S- and A-
// may be combined, as in <C-S-y>.
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	inner, ok := strings.CutPrefix(token, "<")
	if !ok {
		return tea.KeyPressMsg{}, false
	}
	inner, ok = strings.CutSuffix(inner, ">")
	if !ok || inner == "" {
		return tea.KeyPressMsg{}, false
	}
	if strings.EqualFold(inner, "c-[") {
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	}

	var mod tea.KeyMod
	for len(inner) > 2 && inner[1] == '-' {
		switch inner[0] {
		case 'c', 'C':
			mod |= tea.ModCtrl
		case 's', 'S':
			mod |= tea.ModShift
		case 'a', 'A', 'm', 'M':
			mod |= tea.ModAlt
		default:
			return tea.KeyPressMsg{}, false
		}
		inner = inner[2:]
	}

	if strings.EqualFold(inner, "space") {
		if mod == 0 {
			return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, true
		}
		return tea.KeyPressMsg{Code: tea.KeySpace, Mod: mod}, true
	}
	if code, ok := namedKeys[strings.ToLower(inner)]; ok {
		return tea.KeyPressMsg{Code: code, Mod: mod}, true
	}
	if r := []rune(inner); len(r) == 1 && mod != 0 {
		return tea.KeyPressMsg{Code: []rune(strings.ToLower(inner))[0], Mod: mod}, true
	}
	return tea.KeyPressMsg{}, false
}
