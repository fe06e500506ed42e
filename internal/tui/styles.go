// ABOUTME: Colour palette and lipgloss styles for the terminal screens.
// ABOUTME: Green accents for activity, grey for help and secondary text.
package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimaryText   = "#E6EAF2"
	colorSecondaryText = "#B1B8C7"
	colorHelpText      = "240"
	colorAccent        = "#22C55E"
	colorAccentBright  = "#86EFAC"
	colorWarning       = "#F59E0B"
	colorBorder        = "#3A3F55"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccentBright)).
			Bold(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)).
			Bold(true)

	pausedClockStyle = clockStyle.
				Foreground(lipgloss.Color(colorWarning))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSecondaryText))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimaryText)).
			Bold(true)

	activeActivityStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorAccentBright)).
				Bold(true).
				Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(1, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorHelpText)).
			Italic(true)
)
