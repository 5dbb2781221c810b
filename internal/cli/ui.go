package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sheetcalc/pkg/calc"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary actions
	colorGreen = lipgloss.Color("35")  // Green - success
	colorRed   = lipgloss.Color("167") // Soft red - errors
	colorBlue  = lipgloss.Color("75")  // Light blue - commands
	colorWhite = lipgloss.Color("255") // Bright white - values
	colorGray  = lipgloss.Color("245") // Gray - secondary text
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// stdout is where status lines go.
var stdout io.Writer = os.Stdout

// status prints one line led by an icon.
func status(icon string, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(stdout, style.Render(icon), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(iconSuccess, styleIconSuccess, format, args...) }
func printInfo(format string, args ...any)    { status(iconInfo, styleIconInfo, format, args...) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, " ", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, " ", StyleDim.Render(iconArrow), StyleValue.Render(path))
}

// printStats prints a one-line summary such as "3 cells · 1 errors · cached".
func printStats(cells, errs int, cached bool) {
	sep := StyleDim.Render(" · ")
	parts := []string{StyleDim.Render(fmt.Sprintf("%d cells", cells))}
	if errs > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d errors", errs)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, sep))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

// =============================================================================
// Value Tables
// =============================================================================

// cellRow is one line of a value table.
type cellRow struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
	Kind     string `json:"kind"`    // calc.ValueKind name
	Display  string `json:"display"` // formatted value or error code
}

// newCellRow builds the table row for one cell.
func newCellRow(name, contents string, v calc.Value) cellRow {
	return cellRow{Name: name, Contents: contents, Kind: v.Kind.String(), Display: v.String()}
}

// valueTable renders rows as a bordered table of name, contents and value.
func valueTable(rows []cellRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("CELL", "CONTENTS", "VALUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col != 2 || row < 0 || row >= len(rows) {
				return styleCell
			}
			switch rows[row].Kind {
			case calc.ValueError.String():
				return styleCell.Foreground(colorRed)
			case calc.ValueNumber.String():
				return styleCell.Foreground(colorCyan)
			}
			return styleCell
		})
	for _, r := range rows {
		t.Row(r.Name, r.Contents, r.Display)
	}
	return t.Render()
}

// printValueTable prints rows as a value table.
func printValueTable(rows []cellRow) {
	if len(rows) == 0 {
		printInfo("Workbook is empty")
		return
	}
	fmt.Fprintln(stdout, valueTable(rows))
}
