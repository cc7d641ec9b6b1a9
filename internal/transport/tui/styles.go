package tui

import "github.com/charmbracelet/lipgloss"

var (
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	messageBlock = lipgloss.NewStyle().PaddingLeft(2)
	inputBorder  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("2"))
)
