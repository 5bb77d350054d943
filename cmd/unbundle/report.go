package main

import (
	"fmt"
	"io"

	"unbundle/internal/output"
	"unbundle/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors
var (
	successColor = lipgloss.Color("#8BC34A") // Lime Green
	errorColor   = lipgloss.Color("#e53935") // Red
	warningColor = lipgloss.Color("#FFC107") // Yellow
)

var (
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// fileReporter prints one line per module file: successes to out, failures
// to errOut.
func fileReporter(out, errOut io.Writer) func(output.FileResult) {
	return func(r output.FileResult) {
		if r.OK() {
			fmt.Fprintf(out, "%s %s\n", successStyle.Render("Saved"), r.Path)
			return
		}
		fmt.Fprintln(errOut, errorStyle.Render(r.Err.Error()))
	}
}

// printReport prints collisions and, when detailed, the step timings.
func printReport(w io.Writer, r *pipeline.Report, detailed bool) {
	for _, c := range r.Collisions {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf(
			"module %q replaced %q (both map to %s)", c.By, c.Replaced, c.Key)))
	}
	if !detailed {
		return
	}
	for _, s := range r.Steps {
		line := fmt.Sprintf("%-8s %-11s %s", s.Step, s.Outcome, s.Duration)
		if s.Err != nil {
			line += "  " + s.Err.Error()
		}
		fmt.Fprintln(w, mutedStyle.Render(line))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("run %s: %d modules, %d files, %d failures in %s",
		r.RunID, r.Modules, len(r.Files), len(r.WriteFailures()), r.Duration)))
}
