package main

import "github.com/charmbracelet/lipgloss"

// Color palette and shared styles for CLI output.
var (
	mintGreen  = lipgloss.Color("#A8E6CF")
	softViolet = lipgloss.Color("#B39DDB")
	mutedGray  = lipgloss.Color("#6B7280")

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(softViolet).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	barStyle = lipgloss.NewStyle().
			Foreground(mintGreen)
)
