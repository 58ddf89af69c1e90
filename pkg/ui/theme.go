package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Done      lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Base        lipgloss.Style
	Title       lipgloss.Style
	Card        lipgloss.Style
	CardFocused lipgloss.Style
	CardGrabbed lipgloss.Style
	DropMarker  lipgloss.Style
	Empty       lipgloss.Style

	// Pre-computed text styles, created once instead of per card per frame.
	MutedText     lipgloss.Style
	DoneText      lipgloss.Style
	SelectMark    lipgloss.Style
	StatusText    lipgloss.Style
	StatusError   lipgloss.Style
	SecondaryText lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   ColorSubtext,
		Border:    ColorBorder,
		Highlight: ColorHighBg,
		Muted:     ColorMuted,
		Done:      ColorSuccess,
		Danger:    ColorDanger,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Title = r.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Padding(0, 0, 1, 0)

	t.Card = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, SpaceXS)

	t.CardFocused = t.Card.
		BorderForeground(t.Primary).
		Background(ThemeBg("#363949"))

	t.CardGrabbed = t.Card.
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorWarning)

	t.DropMarker = r.NewStyle().
		Foreground(ColorWarning).
		Bold(true)

	t.Empty = r.NewStyle().
		Align(lipgloss.Center).
		Foreground(t.Secondary).
		Italic(true)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.DoneText = r.NewStyle().Foreground(t.Done).Strikethrough(true)
	t.SelectMark = r.NewStyle().Foreground(ColorInfo).Bold(true)
	t.StatusText = r.NewStyle().Foreground(t.Subtext)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
