// Package output provides styled terminal rendering helpers for ghubbattery.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for healthy charge levels and charging.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for critical charge levels.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for low charge levels.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleMuted is used for de-emphasized text.
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleBold = lipgloss.NewStyle().
			Bold(true)
)

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally.
// When disabled, all package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleError = plain
		StyleWarning = plain
		StyleMuted = plain
		StyleBold = plain
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// ConfigureColor turns color off when the user asked for it or when stdout
// is not a terminal.
func ConfigureColor(enabled bool) {
	if !enabled || !isTerminal(os.Stdout.Fd()) {
		SetNoColor(true)
	}
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
