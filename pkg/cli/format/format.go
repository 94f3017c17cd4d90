// Package format provides colored terminal output helpers for the hookconf
// CLI.
package format

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/clubworks/hookconf/pkg/types"
)

// Output colors.
var (
	ErrorColor   = color.New(color.FgRed, color.Bold)
	WarningColor = color.New(color.FgYellow, color.Bold)
	SuccessColor = color.New(color.FgGreen, color.Bold)
	FieldColor   = color.New(color.FgCyan)
	HintColor    = color.New(color.FgYellow, color.Italic)
	HeadingColor = color.New(color.FgHiWhite, color.Bold)
)

// Success prints a green success line.
func Success(format string, args ...interface{}) {
	SuccessColor.Printf("✓ "+format+"\n", args...)
}

// Error prints a red error line.
func Error(format string, args ...interface{}) {
	ErrorColor.Printf("✗ "+format+"\n", args...)
}

// Warning prints a yellow warning line.
func Warning(format string, args ...interface{}) {
	WarningColor.Printf("! "+format+"\n", args...)
}

// PrintValidation renders a validation result: errors, warnings and
// suggestions, each with its field path highlighted.
func PrintValidation(result *types.ValidationResult) {
	for _, e := range result.Errors {
		fmt.Printf("  %s %s: %s (%s)\n",
			ErrorColor.Sprint("error"), FieldColor.Sprint(e.Field), e.Message, e.Code)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  %s %s: %s (%s)\n",
			WarningColor.Sprint("warning"), FieldColor.Sprint(w.Field), w.Message, w.Code)
	}
	for _, s := range result.Suggestions {
		fmt.Printf("  %s %s: %s\n",
			HintColor.Sprint("hint"), FieldColor.Sprint(s.Field), s.Message)
	}
}
