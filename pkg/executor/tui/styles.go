package tui

import "github.com/charmbracelet/lipgloss"

// Palette. All TUI colors come from here.
var (
	skyBlue   = lipgloss.Color("#8AB4F8") // accent, input border
	lavender  = lipgloss.Color("#C5B3F6") // prompts
	sage      = lipgloss.Color("#A8D5BA") // command output
	slate     = lipgloss.Color("#6B7280") // secondary text
	paper     = lipgloss.Color("#F3F4F6") // answers
	brickRed  = lipgloss.Color("#F28B82") // errors
	amberGlow = lipgloss.Color("#FDD663") // detector state
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(slate)

	userStyle = lipgloss.NewStyle().
			Foreground(lavender).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(amberGlow).
			Italic(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(sage)

	answerStyle = lipgloss.NewStyle().
			Foreground(paper)

	errorStyle = lipgloss.NewStyle().
			Foreground(brickRed)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(slate).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(skyBlue).
			Padding(0, 1)
)
