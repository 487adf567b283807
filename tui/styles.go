package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	labelW      = 6 // width of the timeslice label column
	columnGap   = 2
	panelChrome = 4 // border plus padding on each side
	helpHeight  = 4
)

// Lipgloss styles used across the inspector.
var (
	circuitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	programStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	focusedBorder = lipgloss.Color("#ff9e64")

	controlsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	currentRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e0af68"))

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	gateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#73daca"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	lastBitStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f7768e"))

	opcodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	payloadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))
)
