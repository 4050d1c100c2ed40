package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/lint"
)

func sampleBatch() *lint.BatchReport {
	failed := &lint.FileReport{
		File: "tools/rg.atip.json",
		Messages: []lint.Message{
			{
				RuleID:   "required-fields",
				Severity: config.SeverityError,
				Message:  `document is missing required field "version"`,
				Path:     atip.Path{"version"},
			},
			{
				RuleID:   "effects-presence",
				Severity: config.SeverityWarn,
				Message:  "leaf command declares no effects",
				Path:     atip.Path{"commands", "search", "effects"},
				Fixable:  true,
			},
		},
		ErrorCount:          1,
		WarningCount:        1,
		FixableWarningCount: 1,
	}
	clean := &lint.FileReport{File: "tools/jq.atip.json"}

	return &lint.BatchReport{
		Files:                []*lint.FileReport{failed, clean},
		TotalErrors:          1,
		TotalWarnings:        1,
		TotalFixableWarnings: 1,
	}
}

func TestNewSelectsFormatter(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		format string
		want   any
	}{
		{"", &ConsoleFormatter{}},
		{"console", &ConsoleFormatter{}},
		{"json", &JSONFormatter{}},
		{"markdown", &MarkdownFormatter{}},
	}
	for _, tt := range tests {
		f, err := New(tt.format, &buf, false, false)
		if err != nil {
			t.Errorf("New(%q): %v", tt.format, err)
			continue
		}
		if f == nil {
			t.Errorf("New(%q) returned nil", tt.format)
		}
	}

	if _, err := New("xml", &buf, false, false); err == nil {
		t.Error("unknown format must be rejected")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(&buf, false, false)
	f.colorize = false

	if err := f.Format(sampleBatch()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"tools/rg.atip.json",
		"required-fields",
		`missing required field "version"`,
		"effects-presence",
		"(fixable)",
		"commands.search.effects",
		"1 errors, 1 warnings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "tools/jq.atip.json") {
		t.Error("clean files are hidden unless verbose")
	}
}

func TestConsoleFormatVerboseShowsCleanFiles(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(&buf, false, true)
	f.colorize = false

	if err := f.Format(sampleBatch()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "tools/jq.atip.json") {
		t.Error("verbose must list clean files")
	}
}

func TestConsoleFormatQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(&buf, true, false)

	if err := f.Format(sampleBatch()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("quiet mode must stay silent, got %q", buf.String())
	}
}

func TestConsoleFormatAllPassed(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(&buf, false, false)
	f.colorize = false

	batch := &lint.BatchReport{Files: []*lint.FileReport{{File: "ok.atip.json"}}}
	if err := f.Format(batch); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "All passed") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf, true)

	if err := f.Format(sampleBatch()); err != nil {
		t.Fatal(err)
	}

	var report JSONReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if report.Header.Tool != "atiplint" {
		t.Errorf("tool = %q", report.Header.Tool)
	}
	if report.Summary.TotalFiles != 2 || report.Summary.FailedFiles != 1 || report.Summary.SuccessfulFiles != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d", len(report.Results))
	}
	if len(report.Results[0].Messages) != 2 {
		t.Errorf("messages = %+v", report.Results[0].Messages)
	}
}

func TestFormatDeterministicWithPinnedClock(t *testing.T) {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	renderConsole := func() string {
		var buf bytes.Buffer
		f := NewConsoleFormatter(&buf, false, false)
		f.colorize = false
		f.startTime = at
		f.now = func() time.Time { return at.Add(25 * time.Millisecond) }
		if err := f.Format(sampleBatch()); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	renderJSON := func() string {
		var buf bytes.Buffer
		f := NewJSONFormatter(&buf, true)
		f.now = func() time.Time { return at }
		if err := f.Format(sampleBatch()); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	if a, b := renderConsole(), renderConsole(); a != b {
		t.Errorf("console output varies for identical input:\n%s\n---\n%s", a, b)
	}
	if !strings.Contains(renderConsole(), "(25ms)") {
		t.Errorf("console summary should carry the pinned duration:\n%s", renderConsole())
	}
	if a, b := renderJSON(), renderJSON(); a != b {
		t.Errorf("json output varies for identical input:\n%s\n---\n%s", a, b)
	}
	if !strings.Contains(renderJSON(), "2026-08-31T12:00:00Z") {
		t.Errorf("json header should carry the pinned timestamp:\n%s", renderJSON())
	}
}

func TestMarkdownFormat(t *testing.T) {
	var buf bytes.Buffer
	f := NewMarkdownFormatter(&buf, false)

	if err := f.Format(sampleBatch()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# atiplint Report",
		"## Summary",
		"| Files Scanned | 2 |",
		"| Errors | 1 |",
		"### tools/rg.atip.json",
		"`required-fields`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
	if strings.Contains(out, "### tools/jq.atip.json") {
		t.Error("clean files are skipped unless verbose")
	}
}

func TestMarkdownFormatEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	f := NewMarkdownFormatter(&buf, false)
	if err := f.Format(&lint.BatchReport{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No files found") {
		t.Errorf("output = %q", buf.String())
	}
}
