package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is a simple styled table renderer. Cells may contain styled text;
// column widths are measured on the visible characters.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visualLen(h)
	}
	return &Table{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row of values to the table. Missing values are left blank
// and extra values are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		if n := visualLen(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	var sb strings.Builder

	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(StyleHeader.Render(pad(h, t.widths[i])))
	}
	sb.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(StyleMuted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(cell, t.widths[i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// Print writes the table to stdout.
func (t *Table) Print() {
	fmt.Print(t.Render())
}

// visualLen returns the printed width of s, ignoring ANSI escape sequences.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// pad right-pads a string to the given visible width.
func pad(s string, width int) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
