package lint

import (
	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/baseline"
	"github.com/atiptools/atiplint/internal/config"
)

// Rule ids reserved for fatal conditions that are not rules.
const (
	ParseRuleID  = "parse"
	SchemaRuleID = "schema"
)

// Message is one reported finding, ordered by traversal position.
type Message struct {
	RuleID   string          `json:"ruleId"`
	Severity config.Severity `json:"severity"`
	Message  string          `json:"message"`
	Path     atip.Path       `json:"path"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Fixable  bool            `json:"fixable"`
	Fixed    bool            `json:"fixed"`
}

// FileReport is the per-file lint result.
type FileReport struct {
	File     string    `json:"file"`
	Fatal    bool      `json:"fatal"`
	Messages []Message `json:"messages"`

	ErrorCount          int `json:"errorCount"`
	WarningCount        int `json:"warningCount"`
	FixableErrorCount   int `json:"fixableErrorCount"`
	FixableWarningCount int `json:"fixableWarningCount"`

	// Output is the patched text when fixes were applied; empty otherwise.
	Output  string `json:"-"`
	Applied int    `json:"applied"`
}

// recount derives the counters from the message list. Fixable counts track
// messages carrying an available fix, whether or not it was applied.
func (r *FileReport) recount() {
	r.ErrorCount = 0
	r.WarningCount = 0
	r.FixableErrorCount = 0
	r.FixableWarningCount = 0
	for _, m := range r.Messages {
		switch m.Severity {
		case config.SeverityError:
			r.ErrorCount++
			if m.Fixable {
				r.FixableErrorCount++
			}
		case config.SeverityWarn:
			r.WarningCount++
			if m.Fixable {
				r.FixableWarningCount++
			}
		}
	}
}

// BatchReport merges per-file reports without short-circuiting: a malformed
// file contributes its single fatal message while the rest of the batch
// proceeds normally.
type BatchReport struct {
	Files    []*FileReport `json:"files"`
	Canceled bool          `json:"canceled,omitempty"`

	TotalErrors          int `json:"totalErrors"`
	TotalWarnings        int `json:"totalWarnings"`
	TotalFixableErrors   int `json:"totalFixableErrors"`
	TotalFixableWarnings int `json:"totalFixableWarnings"`
}

func (b *BatchReport) add(r *FileReport) {
	b.Files = append(b.Files, r)
	b.TotalErrors += r.ErrorCount
	b.TotalWarnings += r.WarningCount
	b.TotalFixableErrors += r.FixableErrorCount
	b.TotalFixableWarnings += r.FixableWarningCount
}

// HasErrors reports whether any file carries error-severity messages.
func (b *BatchReport) HasErrors() bool { return b.TotalErrors > 0 }

// FilterBaseline removes messages already accepted in the baseline and
// returns how many were dropped. Fatal messages are never filtered.
func FilterBaseline(b *BatchReport, base *baseline.Baseline) int {
	if base == nil {
		return 0
	}
	dropped := 0
	b.TotalErrors = 0
	b.TotalWarnings = 0
	b.TotalFixableErrors = 0
	b.TotalFixableWarnings = 0
	for _, r := range b.Files {
		kept := r.Messages[:0]
		for _, m := range r.Messages {
			if !r.Fatal && base.IsKnown(baseline.Entry{File: r.File, RuleID: m.RuleID, Path: m.Path.String()}) {
				dropped++
				continue
			}
			kept = append(kept, m)
		}
		r.Messages = kept
		r.recount()
		b.TotalErrors += r.ErrorCount
		b.TotalWarnings += r.WarningCount
		b.TotalFixableErrors += r.FixableErrorCount
		b.TotalFixableWarnings += r.FixableWarningCount
	}
	return dropped
}

// BaselineEntries converts a batch into baseline entries for snapshotting.
func BaselineEntries(b *BatchReport) []baseline.Entry {
	var out []baseline.Entry
	for _, r := range b.Files {
		for _, m := range r.Messages {
			out = append(out, baseline.Entry{File: r.File, RuleID: m.RuleID, Path: m.Path.String()})
		}
	}
	return out
}
