package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChargeBar(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		width      int
		want       string
	}{
		{"full", 100, 10, "██████████ 100%"},
		{"half", 50, 10, "█████░░░░░  50%"},
		{"empty", 0, 4, "░░░░   0%"},
		{"over range", 150, 4, "████ 150%"},
		{"negative", -5, 4, "░░░░  -5%"},
		{"default width", 100, 0, strings.Repeat("█", 20) + " 100%"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChargeBar(tc.percentage, tc.width, 20))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, " 88%", FormatPercent(87.5))
	assert.Equal(t, "  7%", FormatPercent(7.2))
	assert.Equal(t, "100%", FormatPercent(100))
}

func TestSection(t *testing.T) {
	s := Section("Batteries")
	assert.Contains(t, s, "Batteries")
	assert.Contains(t, s, strings.Repeat("─", 48))
}
