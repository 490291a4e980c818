package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// ANSI escape codes
const (
	escClear      = "\x1b[2J"
	escHome       = "\x1b[H"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
	escReset      = "\x1b[0m"
)

type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	yes     lipgloss.Style
	missing lipgloss.Style
	footer  lipgloss.Style
	keyHint lipgloss.Style
}

// newStyles builds styles for out so that colors are dropped when out is not
// a color terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		section: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")),
		label: r.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12),
		value: r.NewStyle().
			Foreground(lipgloss.Color("250")),
		yes: r.NewStyle().
			Foreground(lipgloss.Color("42")),
		missing: r.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true),
		footer: r.NewStyle().
			Foreground(lipgloss.Color("241")),
		keyHint: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
	}
}
