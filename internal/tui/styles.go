package tui

import "github.com/charmbracelet/lipgloss"

const (
	primaryColor = "#7C3AED"
	okColor      = "#10B981"
	warningColor = "#F59E0B"
	errorColor   = "#EF4444"
	dimColor     = "#6B7280"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	timerStyle = lipgloss.NewStyle().Bold(true)

	questionStyle = lipgloss.NewStyle().
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	listeningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(okColor))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))
)

// countdownColor follows the remaining answer time.
func countdownColor(secondsRemaining int) string {
	switch {
	case secondsRemaining > 30:
		return okColor
	case secondsRemaining > 15:
		return warningColor
	}
	return errorColor
}
