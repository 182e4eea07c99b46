package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("86")  // Cyan
	colorSecondary = lipgloss.Color("240") // Gray
	colorSuccess   = lipgloss.Color("82")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("245") // Light gray
)

// Styles
var (
	// Title bar
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(0)

	// Help text
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Section headers
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	// Progress bar
	progressBarEmptyStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	// Values
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Error
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	// Status colors
	okStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarning)
)

// getProgressColor returns color based on usage percentage
func getProgressColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 90:
		return colorDanger
	case percent >= 70:
		return colorWarning
	default:
		return colorSuccess
	}
}

// errorCountStyle highlights server errors once there are any
func errorCountStyle(n uint64) lipgloss.Style {
	if n > 0 {
		return errorStyle
	}
	return valueStyle
}
