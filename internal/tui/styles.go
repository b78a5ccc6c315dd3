package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorHeader  = lipgloss.Color("208") // orange
	ColorMuted   = lipgloss.Color("245")
	ColorError   = lipgloss.Color("196")
	ColorSpinner = lipgloss.Color("39")
	ColorActive  = lipgloss.Color("153") // light blue
	ColorControl = lipgloss.Color("252")
)

var (
	TitleStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)

	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ControlStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Margin(0, 1).
			Foreground(ColorControl)

	ActiveControlStyle = ControlStyle.
				Background(ColorActive).
				Foreground(lipgloss.Color("16")).
				Bold(true)
)
