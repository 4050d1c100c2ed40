// Package output renders batch reports for humans and machines.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/lint"
)

// Formatter renders a finished batch report.
type Formatter interface {
	Format(batch *lint.BatchReport) error
}

// New returns the formatter for a --format value.
func New(format string, w io.Writer, quiet, verbose bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(w, quiet, verbose), nil
	case "json":
		return NewJSONFormatter(w, true), nil
	case "markdown":
		return NewMarkdownFormatter(w, verbose), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected console, json, or markdown)", format)
	}
}

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w         io.Writer
	quiet     bool
	verbose   bool
	colorize  bool
	startTime time.Time
	now       func() time.Time // swappable in tests for stable output
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		w:         w,
		quiet:     quiet,
		verbose:   verbose,
		colorize:  true,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Format formats the batch report for console output
func (f *ConsoleFormatter) Format(batch *lint.BatchReport) error {
	if f.quiet {
		// Only the exit code speaks in quiet mode
		return nil
	}

	f.printFileResults(batch)
	f.printSummary(batch)
	f.printConclusion(batch)
	return nil
}

// printFileResults prints results for each file
func (f *ConsoleFormatter) printFileResults(batch *lint.BatchReport) {
	for _, report := range batch.Files {
		hasIssues := len(report.Messages) > 0
		if !hasIssues && !f.verbose {
			continue
		}

		status := "✓"
		if report.Fatal || report.ErrorCount > 0 {
			status = "✗"
		} else if report.WarningCount > 0 {
			status = "⚠"
		}

		var fileStyle lipgloss.Style
		if f.colorize {
			if report.Fatal || report.ErrorCount > 0 {
				fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
			} else if report.WarningCount > 0 {
				fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
			} else {
				fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
			}
		}

		fmt.Fprintf(f.w, "%s %s\n", fileStyle.Render(status), report.File)

		for _, msg := range report.Messages {
			f.printMessage(msg)
		}
		if report.Applied > 0 {
			fmt.Fprintf(f.w, "    %d fix(es) applied\n", report.Applied)
		}
	}
}

// printMessage prints one diagnostic with appropriate styling
func (f *ConsoleFormatter) printMessage(msg lint.Message) {
	var style lipgloss.Style
	if f.colorize {
		switch msg.Severity {
		case config.SeverityError:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
		case config.SeverityWarn:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
		default:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("7")) // gray
		}
	}

	prefix := "    "
	switch msg.Severity {
	case config.SeverityError:
		prefix = "    ✘ "
	case config.SeverityWarn:
		prefix = "    ⚠ "
	}

	location := msg.Path.String()
	suffix := ""
	if msg.Fixed {
		suffix = " (fixed)"
	} else if msg.Fixable {
		suffix = " (fixable)"
	}

	fmt.Fprintf(f.w, "%s%s %s: %s%s\n", prefix, style.Render(msg.RuleID), location, msg.Message, suffix)
}

// printSummary prints the summary statistics
func (f *ConsoleFormatter) printSummary(batch *lint.BatchReport) {
	if batch.TotalErrors == 0 && batch.TotalWarnings == 0 {
		return
	}

	passed := 0
	for _, report := range batch.Files {
		if !report.Fatal && report.ErrorCount == 0 && report.WarningCount == 0 {
			passed++
		}
	}

	duration := f.now().Sub(f.startTime)
	fmt.Fprintf(f.w, "\n%d/%d passed, %d errors, %d warnings (%v)\n",
		passed, len(batch.Files),
		batch.TotalErrors, batch.TotalWarnings,
		duration.Round(time.Millisecond))

	if batch.TotalFixableErrors+batch.TotalFixableWarnings > 0 {
		fmt.Fprintf(f.w, "%d error(s) and %d warning(s) fixable with --fix\n",
			batch.TotalFixableErrors, batch.TotalFixableWarnings)
	}
	if batch.Canceled {
		fmt.Fprintln(f.w, "run canceled before all files were linted")
	}
}

// printConclusion prints the conclusion message
func (f *ConsoleFormatter) printConclusion(batch *lint.BatchReport) {
	if batch.TotalErrors != 0 || batch.TotalWarnings != 0 {
		return
	}
	if len(batch.Files) > 0 {
		fmt.Fprintln(f.w)
	}
	if f.colorize {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
		fmt.Fprintf(f.w, "%s\n", style.Render("✓ All passed"))
	} else {
		fmt.Fprintln(f.w, "✓ All passed")
	}
}
