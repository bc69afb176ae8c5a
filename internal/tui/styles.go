// Package tui implements the Bubble Tea shell of the reception desk.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Geek-master-100/ai-customer-reception/internal/styles"
)

// Styles used for rendering the shell.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	// Platform bar.
	platformStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(styles.ColorWhite)

	platformFocusedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(styles.ColorBlue).
				Foreground(lipgloss.Color("#1a1b26")).
				Bold(true)

	// Session tabs.
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(styles.ColorGray)

	tabActiveStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(styles.ColorBlue).
			Bold(true).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	attachedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	loadingStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed)

	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			Italic(true).
			PaddingLeft(1)

	// Notices stack.
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorYellow).
			Padding(0, 1)

	noticeTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.ColorWhite)

	// Preview modal.
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)
)

const iconDot = "•"
