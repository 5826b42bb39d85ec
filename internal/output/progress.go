package output

import (
	"fmt"
	"strings"
)

// criticalPercent is the charge level below which a bar is drawn as critical
// regardless of the configured low threshold.
const criticalPercent = 5.0

// ChargeBar renders a battery charge bar for a 0-100 percentage.
// Example: "████████░░  80%"
// Levels below low are drawn as a warning, below 5% as critical.
func ChargeBar(percentage float64, width int, low float64) string {
	if width <= 0 {
		width = 20
	}
	filled := int((percentage / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	return fmt.Sprintf("%s %s", LevelStyle(percentage, low)(bar), FormatPercent(percentage))
}

// LevelStyle returns the render function matching a charge level.
func LevelStyle(percentage, low float64) func(...string) string {
	switch {
	case percentage < criticalPercent:
		return StyleError.Render
	case percentage < low:
		return StyleWarning.Render
	default:
		return StyleSuccess.Render
	}
}

// FormatPercent formats a percentage right-aligned to four cells, rounding
// to the nearest whole percent.
func FormatPercent(percentage float64) string {
	return fmt.Sprintf("%3.0f%%", percentage)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 48))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
