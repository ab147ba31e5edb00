package output

import (
	"os"

	"github.com/fatih/color"
)

var (
	// Outcome colors
	Updated  = color.New(color.FgGreen)
	UpToDate = color.New(color.Faint)
	Pinned   = color.New(color.FgCyan)
	NotFound = color.New(color.FgYellow)
	Skipped  = color.New(color.FgMagenta)
	Failed   = color.New(color.FgRed)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Reset is used for unknown outcomes
	Reset = color.New(color.Reset)

	// Structural colors
	Header     = color.New(color.FgWhite, color.Bold)
	Dependency = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// OutcomeColor returns the color for a check outcome
func OutcomeColor(outcome string) *color.Color {
	switch outcome {
	case "updated":
		return Updated
	case "up-to-date":
		return UpToDate
	case "pinned":
		return Pinned
	case "not-found":
		return NotFound
	case "downgrade-skipped":
		return Skipped
	case "failed":
		return Failed
	default:
		return Reset
	}
}

// FormatOutcome formats an outcome with its color
func FormatOutcome(outcome string) string {
	return OutcomeColor(outcome).Sprintf("[%s]", outcome)
}

// FormatDependency formats a dependency name with color
func FormatDependency(name string) string {
	return Dependency.Sprint(name)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}
