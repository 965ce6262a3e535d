// Package render prints tasks and reports for the terminal.
package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles contains the lipgloss styles used for output.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Done     lipgloss.Style
	ID       lipgloss.Style
	Overdue  lipgloss.Style
	Today    lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Tag      lipgloss.Style
	Branch   lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Key      lipgloss.Style
	Archived lipgloss.Style
}

// NewStyles builds styles bound to r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Done: r.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			Strikethrough(true),
		ID: r.NewStyle().
			Foreground(lipgloss.Color("86")), // Cyan
		Overdue: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Today: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		High: r.NewStyle().
			Foreground(lipgloss.Color("196")),
		Medium: r.NewStyle().
			Foreground(lipgloss.Color("214")), // Orange
		Low: r.NewStyle().
			Foreground(lipgloss.Color("33")), // Blue
		Tag: r.NewStyle().
			Foreground(lipgloss.Color("170")), // Pink
		Branch: r.NewStyle().
			Foreground(lipgloss.Color("99")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("241")),
		Success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")),
		Error: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Key: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		Archived: r.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("241")),
	}
}

// newRenderer returns a lipgloss renderer for w. Without color every style
// renders plain text.
func newRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
