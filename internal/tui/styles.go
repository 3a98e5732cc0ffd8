// Package tui provides terminal output for FORGE: semantic styles, result
// and review tables, and the interactive gate approval prompt.
//
// Colors use lipgloss AdaptiveColor for light and dark terminals. Call
// CheckNoColor before rendering to honor NO_COLOR and TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/forge/internal/constants"
)

//nolint:gochecknoglobals // Package-level style palette
var (
	// ColorPrimary is used for headings and active states.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is used for passing verdicts.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is used for soft verdicts and overrides.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is used for failing verdicts.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting.
	StyleBold = lipgloss.NewStyle().Bold(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates the common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor downgrades lipgloss to plain ASCII when colors are unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false when NO_COLOR is present (any value) or TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// VerdictColor maps a verdict to its semantic color.
func VerdictColor(v constants.Verdict) lipgloss.AdaptiveColor {
	switch v {
	case constants.VerdictPass:
		return ColorSuccess
	case constants.VerdictNeedsImprovement, constants.VerdictConditionalPass, constants.VerdictNeedsReview:
		return ColorWarning
	case constants.VerdictFail:
		return ColorError
	default:
		return ColorMuted
	}
}

// VerdictIcon returns the status icon for a verdict.
func VerdictIcon(v constants.Verdict) string {
	switch v {
	case constants.VerdictPass:
		return "✓"
	case constants.VerdictNeedsImprovement, constants.VerdictConditionalPass:
		return "◐"
	case constants.VerdictNeedsReview:
		return "?"
	case constants.VerdictFail:
		return "✗"
	default:
		return "·"
	}
}

// RenderVerdict renders icon and verdict text in the verdict's color.
// An empty verdict renders as "-".
func RenderVerdict(v constants.Verdict) string {
	text := v.String()
	if text == "" {
		text = "-"
	}
	return lipgloss.NewStyle().Foreground(VerdictColor(v)).Render(VerdictIcon(v) + " " + text)
}
