package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette used for terminal output.
var (
	colourPrimary   = lipgloss.Color("#7C3AED")
	colourSecondary = lipgloss.Color("#06B6D4")
	colourMuted     = lipgloss.Color("#6C7086")
	colourSuccess   = lipgloss.Color("#A6E3A1")
	colourWarning   = lipgloss.Color("#F9E2AF")
	colourError     = lipgloss.Color("#F38BA8")
)

// outputStyles holds the styles for command output. Colours degrade to
// plain text when stdout is not a terminal.
type outputStyles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var styles = newOutputStyles()

func newOutputStyles() outputStyles {
	return outputStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		Section: lipgloss.NewStyle().Bold(true).Foreground(colourSecondary),
		Label:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(colourMuted),
		Success: lipgloss.NewStyle().Foreground(colourSuccess),
		Warning: lipgloss.NewStyle().Foreground(colourWarning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colourError),
	}
}
