package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/lint"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w       io.Writer
	verbose bool
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, verbose bool) *MarkdownFormatter {
	return &MarkdownFormatter{w: w, verbose: verbose}
}

// Format formats the batch report as Markdown
func (f *MarkdownFormatter) Format(batch *lint.BatchReport) error {
	var builder strings.Builder

	builder.WriteString("# atiplint Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Metric | Count |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", len(batch.Files)))
	builder.WriteString(fmt.Sprintf("| Errors | %d |\n", batch.TotalErrors))
	builder.WriteString(fmt.Sprintf("| Warnings | %d |\n", batch.TotalWarnings))
	builder.WriteString(fmt.Sprintf("| Fixable | %d |\n", batch.TotalFixableErrors+batch.TotalFixableWarnings))
	builder.WriteString("\n")

	builder.WriteString("## Detailed Results\n\n")

	if len(batch.Files) == 0 {
		builder.WriteString("*No files found to lint.*\n")
	} else {
		for _, report := range batch.Files {
			clean := report.ErrorCount == 0 && report.WarningCount == 0 && !report.Fatal
			if !f.verbose && clean {
				continue
			}

			fileName := strings.TrimPrefix(report.File, "./")
			builder.WriteString(fmt.Sprintf("### %s\n\n", fileName))
			builder.WriteString(fmt.Sprintf("Status: %s\n\n", statusEmoji(report)))

			if len(report.Messages) > 0 {
				builder.WriteString("| Severity | Rule | Path | Message |\n")
				builder.WriteString("|----------|------|------|--------|\n")
				for _, msg := range report.Messages {
					builder.WriteString(fmt.Sprintf("| %s | `%s` | `%s` | %s |\n",
						severityLabel(msg.Severity), msg.RuleID, msg.Path.String(),
						strings.ReplaceAll(msg.Message, "|", "\\|")))
				}
				builder.WriteString("\n")
			}
			if report.Applied > 0 {
				builder.WriteString(fmt.Sprintf("%d fix(es) applied.\n\n", report.Applied))
			}
		}
	}

	_, err := io.WriteString(f.w, builder.String())
	return err
}

func statusEmoji(report *lint.FileReport) string {
	switch {
	case report.Fatal || report.ErrorCount > 0:
		return "❌ Failed"
	case report.WarningCount > 0:
		return "⚠️ Warnings"
	default:
		return "✅ Passed"
	}
}

func severityLabel(s config.Severity) string {
	if s == config.SeverityError {
		return "error"
	}
	return "warning"
}
