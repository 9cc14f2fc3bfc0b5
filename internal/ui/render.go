package ui

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tv/internal/engine"
	"github.com/oakwood-commons/tv/internal/view"
)

const (
	scrollTrack = "│"
	scrollThumb = "┃"
)

// renderFrame draws s: the column header line, the table area, then the
// status line. input is the command line shown after the prompt.
func renderFrame(s engine.Snapshot, st styles, input string, popupOffset int) string {
	l := s.Layout
	lines := make([]string, 0, l.Height)
	lines = append(lines, renderHeader(s, st))
	if s.Popup != "" {
		lines = append(lines, renderPopup(s.Popup, popupOffset, l.Width, l.TableHeight, st)...)
	} else {
		lines = append(lines, renderGrid(s, st)...)
	}
	lines = append(lines, renderStatus(s, st, input))
	return strings.Join(lines, "\n")
}

func pad(s string, width int) string {
	return runewidth.FillRight(view.Fit(s, width), width)
}

func renderHeader(s engine.Snapshot, st styles) string {
	l := s.Layout
	var b strings.Builder
	if s.Index != nil {
		b.WriteString(pad("#", l.IndexWidth))
	}
	for i, c := range s.Columns {
		w := columnWidth(s, i)
		if w <= 0 {
			break
		}
		b.WriteString(pad(view.VisibleName(c.Name, w), w))
		if i < len(s.Columns)-1 {
			b.WriteString(" ")
		}
	}
	return st.header.Render(pad(b.String(), l.Width))
}

// columnWidth is the drawn width of column i, cut at the table edge.
func columnWidth(s engine.Snapshot, i int) int {
	x := s.Layout.IndexWidth
	if i < len(s.Layout.ColumnX) {
		x = s.Layout.ColumnX[i]
	}
	return min(s.Columns[i].Width, s.Layout.TableWidth-x)
}

func renderGrid(s engine.Snapshot, st styles) []string {
	l := s.Layout
	bar := scrollbar(l.TableHeight, s.Position, s.Total)
	lines := make([]string, l.TableHeight)
	for r := range lines {
		onCursor := r == s.SelectedRow
		base := st.cell
		if onCursor {
			base = st.row
		}

		var b strings.Builder
		used := 0
		if s.Index != nil {
			label := ""
			if r < len(s.Index.Cells) {
				label = s.Index.Cells[r]
			}
			b.WriteString(st.index.Render(runewidth.FillLeft(label, l.IndexWidth-1) + " "))
			used = l.IndexWidth
		}
		for i, c := range s.Columns {
			w := columnWidth(s, i)
			if w <= 0 {
				break
			}
			cell := ""
			if r < len(c.Cells) {
				cell = c.Cells[r]
			}
			style := base
			switch {
			case onCursor && i == s.SelectedColumn:
				style = st.selected
			case cell == view.CollapsedMarker:
				style = st.collapsed
			}
			b.WriteString(style.Render(pad(cell, w)))
			used += w
			if i < len(s.Columns)-1 && used < l.TableWidth {
				b.WriteString(base.Render(" "))
				used++
			}
		}
		if used < l.TableWidth {
			b.WriteString(base.Render(strings.Repeat(" ", l.TableWidth-used)))
		}
		if l.Width > l.TableWidth {
			b.WriteString(st.scroll.Render(bar[r]))
		}
		lines[r] = b.String()
	}
	return lines
}

// scrollbar returns one cell per table line. It stays blank while every row
// fits.
func scrollbar(height, position, total int) []string {
	bar := make([]string, height)
	if total <= height || height <= 0 {
		for i := range bar {
			bar[i] = " "
		}
		return bar
	}
	thumb := max(height*height/total, 1)
	start := 0
	if position > 1 {
		start = (position - 1) * (height - thumb) / (total - 1)
	}
	for i := range bar {
		if i >= start && i < start+thumb {
			bar[i] = scrollThumb
		} else {
			bar[i] = scrollTrack
		}
	}
	return bar
}

func renderPopup(text string, offset, width, height int, st styles) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	innerH := max(height-2, 1)
	innerW := max(width-4, 1)
	offset = clampOffset(offset, len(lines), innerH)
	lines = lines[offset:min(offset+innerH, len(lines))]

	widest := 0
	for _, l := range lines {
		widest = max(widest, runewidth.StringWidth(l))
	}
	innerW = min(innerW, widest)
	for i, l := range lines {
		lines[i] = pad(l, innerW)
	}
	box := st.popup.Render(strings.Join(lines, "\n"))
	placed := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	out := strings.Split(placed, "\n")
	if len(out) > height {
		out = out[:height]
	}
	return out
}

func clampOffset(offset, lines, window int) int {
	return max(min(offset, lines-window), 0)
}

func renderStatus(s engine.Snapshot, st styles, input string) string {
	width := s.Layout.Width
	right := ""
	if s.Total > 0 {
		right = " " + strconv.Itoa(s.Position) + "/" + strconv.Itoa(s.Total) + " "
	}
	room := max(width-runewidth.StringWidth(right), 0)

	var left string
	if s.Prompt != "" {
		prompt := view.Fit(s.Prompt, room)
		left = st.prompt.Render(prompt)
		if rest := room - runewidth.StringWidth(prompt); rest > 0 {
			left += ansi.Truncate(input, rest, "")
		}
	} else {
		title := view.Fit(s.Title, room)
		left = st.title.Render(title)
		if rest := room - runewidth.StringWidth(title) - 2; rest > 0 && s.Message != "" {
			left += st.status.Render("  ") + st.message.Render(view.Fit(s.Message, rest))
		}
	}
	if w := ansi.StringWidth(left); w < room {
		left += st.status.Render(strings.Repeat(" ", room-w))
	}
	return left + st.status.Render(right)
}
