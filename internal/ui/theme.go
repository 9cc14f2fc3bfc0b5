package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors a frame is drawn with.
type Theme struct {
	HeaderFG    color.Color // Column names
	HeaderBG    color.Color
	IndexFG     color.Color // Row numbers
	SelectedFG  color.Color // Cursor cell
	SelectedBG  color.Color
	RowBG       color.Color // Rest of the cursor row
	CollapsedFG color.Color
	StatusFG    color.Color // Status line
	StatusBG    color.Color
	TitleFG     color.Color
	MessageFG   color.Color
	PromptFG    color.Color
	ScrollFG    color.Color
	PopupBorder color.Color
}

// DefaultTheme is a dark palette tuned for 256-color terminals.
func DefaultTheme() Theme {
	return Theme{
		HeaderFG:    lipgloss.Color("81"),  // cyan column names
		HeaderBG:    lipgloss.Color("236"), // charcoal
		IndexFG:     lipgloss.Color("244"),
		SelectedFG:  lipgloss.Color("250"),
		SelectedBG:  lipgloss.Color("24"), // deep teal
		RowBG:       lipgloss.Color("235"),
		CollapsedFG: lipgloss.Color("240"),
		StatusFG:    lipgloss.Color("246"),
		StatusBG:    lipgloss.Color("236"),
		TitleFG:     lipgloss.Color("81"),
		MessageFG:   lipgloss.Color("114"), // mint
		PromptFG:    lipgloss.Color("215"),
		ScrollFG:    lipgloss.Color("238"),
		PopupBorder: lipgloss.Color("81"),
	}
}

type styles struct {
	header    lipgloss.Style
	index     lipgloss.Style
	cell      lipgloss.Style
	selected  lipgloss.Style
	row       lipgloss.Style
	collapsed lipgloss.Style
	status    lipgloss.Style
	title     lipgloss.Style
	message   lipgloss.Style
	prompt    lipgloss.Style
	scroll    lipgloss.Style
	popup     lipgloss.Style
}

// newStyles builds the frame styles. Without color only the cursor cell
// stands out, drawn in reverse video.
func newStyles(th Theme, noColor bool) styles {
	popup := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			header:    plain.Bold(true),
			index:     plain,
			cell:      plain,
			selected:  plain.Reverse(true),
			row:       plain,
			collapsed: plain,
			status:    plain,
			title:     plain.Bold(true),
			message:   plain,
			prompt:    plain,
			scroll:    plain,
			popup:     popup,
		}
	}
	return styles{
		header:    lipgloss.NewStyle().Foreground(th.HeaderFG).Background(th.HeaderBG).Bold(true),
		index:     lipgloss.NewStyle().Foreground(th.IndexFG),
		cell:      lipgloss.NewStyle(),
		selected:  lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG).Bold(true),
		row:       lipgloss.NewStyle().Background(th.RowBG),
		collapsed: lipgloss.NewStyle().Foreground(th.CollapsedFG),
		status:    lipgloss.NewStyle().Foreground(th.StatusFG).Background(th.StatusBG),
		title:     lipgloss.NewStyle().Foreground(th.TitleFG).Background(th.StatusBG).Bold(true),
		message:   lipgloss.NewStyle().Foreground(th.MessageFG).Background(th.StatusBG),
		prompt:    lipgloss.NewStyle().Foreground(th.PromptFG).Background(th.StatusBG).Bold(true),
		scroll:    lipgloss.NewStyle().Foreground(th.ScrollFG),
		popup:     popup.BorderForeground(th.PopupBorder),
	}
}
