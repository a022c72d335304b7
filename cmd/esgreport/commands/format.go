package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// stdout receives command output. Logs go to stderr.
var stdout io.Writer = os.Stdout

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a boxed section title
func PrintHeader(title string) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, doubleLine)
	fmt.Fprintf(stdout, "  %s\n", title)
	fmt.Fprintln(stdout, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(stdout, singleLine)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Fprintln(stdout, doubleLine)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(stdout, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(stdout, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintf(stdout, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintf(stdout, "   %s\n", strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	fmt.Fprint(stdout, "   ")
	for i, val := range values {
		fmt.Fprintf(stdout, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(stdout, "  ")
		}
	}
	fmt.Fprintln(stdout)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(stdout, "   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(stdout, "   %-*s : %s\n", keyWidth, key, value)
}
