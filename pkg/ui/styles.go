package ui

import "github.com/charmbracelet/lipgloss"

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
)

// Adaptive colors for light and dark terminals. Light mode colors are tuned
// for a contrast ratio of at least 4.5:1 on white.
var (
	ColorText     = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBorder   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}
	ColorHighBg   = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"}
	ColorHeaderBg = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#2A2A2A"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// columnAccents cycles through header colors so neighbouring columns differ.
var columnAccents = []lipgloss.AdaptiveColor{
	{Light: "#007700", Dark: "#50FA7B"},
	{Light: "#006080", Dark: "#8BE9FD"},
	{Light: "#6B47D9", Dark: "#BD93F9"},
	{Light: "#B06800", Dark: "#FFB86C"},
	{Light: "#CC0000", Dark: "#FF5555"},
}

func columnAccent(i int) lipgloss.AdaptiveColor {
	return columnAccents[i%len(columnAccents)]
}
