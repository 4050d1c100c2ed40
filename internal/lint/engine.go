// Package lint wires the pipeline together: text to syntax tree to semantic
// tree, joined with the resolved configuration, dispatched through the rule
// registry, optionally fixed, and aggregated per file and per batch.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/fix"
	"github.com/atiptools/atiplint/internal/probe"
	"github.com/atiptools/atiplint/internal/rules"
	"github.com/atiptools/atiplint/internal/schemacheck"
	"github.com/atiptools/atiplint/internal/syntax"
)

// Options controls one lint invocation.
type Options struct {
	ApplyFixes bool
}

// Engine lints files against one resolved configuration. An Engine is
// read-only after construction and safe for concurrent per-file use; every
// rule's closure state is freshly instantiated per file.
type Engine struct {
	cfg       *config.Resolved
	validator schemacheck.Validator
	prober    probe.Prober
}

// New builds an engine. The schema validator is constructed once up front;
// a broken schema configuration fails the whole invocation, like any other
// configuration problem.
func New(cfg *config.Resolved) (*Engine, error) {
	e := &Engine{cfg: cfg}
	if cfg.SchemaEnabled {
		var err error
		if cfg.SchemaPath != "" {
			e.validator, err = schemacheck.NewJSONSchemaValidator(cfg.SchemaPath)
		} else {
			e.validator, err = schemacheck.NewCUEValidator()
		}
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// WithProber enables executable-category rules.
func (e *Engine) WithProber(p probe.Prober) *Engine {
	e.prober = p
	return e
}

// LintFile reads and lints one file. A read failure is reported as that
// file's single fatal message, not an error: one bad file never aborts a
// batch.
func (e *Engine) LintFile(path string, opts Options) *FileReport {
	text, err := os.ReadFile(path)
	if err != nil {
		r := &FileReport{File: path, Fatal: true}
		r.Messages = append(r.Messages, Message{
			RuleID:   ParseRuleID,
			Severity: config.SeverityError,
			Message:  fmt.Sprintf("cannot read file: %v", err),
		})
		r.recount()
		return r
	}
	return e.LintText(path, string(text), opts)
}

// LintText lints raw document text. The result is a pure function of the
// text and the resolved configuration.
func (e *Engine) LintText(file, text string, opts Options) *FileReport {
	r := &FileReport{File: file}

	root, err := syntax.Parse(text)
	if err != nil {
		r.Fatal = true
		r.Messages = append(r.Messages, Message{
			RuleID:   ParseRuleID,
			Severity: config.SeverityError,
			Message:  fmt.Sprintf("parse failure: %v", err),
		})
		r.recount()
		return r
	}

	if e.validator != nil {
		var doc any
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			// The scanner and encoding/json must agree on what parses; a
			// document the schema backend cannot even decode fails fast
			// rather than silently skipping validation.
			r.Fatal = true
			r.Messages = append(r.Messages, Message{
				RuleID:   ParseRuleID,
				Severity: config.SeverityError,
				Message:  fmt.Sprintf("parse failure: %v", err),
			})
			r.recount()
			return r
		}
		violations, verr := e.validator.Validate(doc)
		if verr != nil {
			r.Fatal = true
			r.Messages = append(r.Messages, Message{
				RuleID:   SchemaRuleID,
				Severity: config.SeverityError,
				Message:  fmt.Sprintf("schema validation failure: %v", verr),
			})
			r.recount()
			return r
		}
		if len(violations) > 0 {
			r.Fatal = true
			for _, v := range violations {
				r.Messages = append(r.Messages, Message{
					RuleID:   SchemaRuleID,
					Severity: config.SeverityError,
					Message:  fmt.Sprintf("schema validation failure: %s (%s)", v.Message, v.Keyword),
					Path:     violationPath(v.Path),
				})
			}
			r.recount()
			return r
		}
	}

	doc := atip.Project(root)
	issues := rules.Run(doc, rules.RunOptions{
		File:   file,
		Rules:  e.rulesFor(file),
		Prober: e.prober,
	})

	var edits []fix.Edit
	for _, iss := range issues {
		m := Message{
			RuleID:   iss.RuleID,
			Severity: iss.Severity,
			Message:  iss.Message,
			Path:     iss.Path,
			Fixable:  iss.Fix != nil,
		}
		m.Start, m.End = resolveRange(root, iss.Path)
		r.Messages = append(r.Messages, m)
		if opts.ApplyFixes && iss.Fix != nil {
			edits = append(edits, *iss.Fix)
		}
	}

	if opts.ApplyFixes && len(edits) > 0 {
		res := fix.Apply(text, edits)
		r.Output = res.Output
		r.Applied = res.Applied
		rejected := map[fix.Edit]bool{}
		for _, c := range res.Conflicts {
			rejected[c] = true
		}
		for i := range r.Messages {
			m := &r.Messages[i]
			if !m.Fixable {
				continue
			}
			// A rejected conflict degrades from fixed back to reported
			// with an available but unapplied fix.
			edit := findEdit(issues, i)
			if edit != nil && !rejected[*edit] {
				m.Fixed = true
			}
		}
	}

	r.recount()
	return r
}

// findEdit returns the fix of the issue backing message index i. Messages
// are appended in issue order, so indices line up.
func findEdit(issues []rules.Issue, i int) *fix.Edit {
	if i < 0 || i >= len(issues) {
		return nil
	}
	return issues[i].Fix
}

// rulesFor layers matching overrides on top of the base rule map.
func (e *Engine) rulesFor(file string) map[string]config.RuleSetting {
	if len(e.cfg.Overrides) == 0 {
		return e.cfg.Rules
	}
	rel := filepath.ToSlash(file)
	merged := make(map[string]config.RuleSetting, len(e.cfg.Rules))
	for id, s := range e.cfg.Rules {
		merged[id] = s
	}
	for _, ov := range e.cfg.Overrides {
		for _, pattern := range ov.Files {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				for id, s := range ov.Rules {
					merged[id] = s
				}
				break
			}
		}
	}
	return merged
}

// resolveRange maps a structural path to the byte extent of the deepest
// node that exists on it. Diagnostics about a missing field land on the
// field's enclosing object.
func resolveRange(root *syntax.Node, path atip.Path) (int, int) {
	node := root
	for _, step := range path {
		next := node.Lookup(step)
		if next == nil {
			break
		}
		node = next
	}
	if node == nil {
		return 0, 0
	}
	return node.Offset, node.End()
}

func violationPath(joined string) atip.Path {
	if joined == "" {
		return nil
	}
	var p atip.Path
	for _, part := range splitPath(joined) {
		p = append(p, part)
	}
	return p
}

func splitPath(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// ExpandPatterns resolves path patterns through the glob collaborator and
// filters the resolved configuration's ignore patterns. Order follows the
// pattern list; duplicates are dropped.
func (e *Engine) ExpandPatterns(patterns []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if matches == nil {
			// A literal path that exists but contains no glob metacharacters
			// still deserves a report, even if unreadable later.
			if _, statErr := os.Stat(pattern); statErr == nil {
				matches = []string{pattern}
			}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if seen[m] || e.ignored(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	return files, nil
}

func (e *Engine) ignored(path string) bool {
	rel := filepath.ToSlash(path)
	for _, pattern := range e.cfg.IgnorePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// LintPaths lints every file matched by the patterns. Files are mutually
// independent, so they run in parallel up to concurrency. Cancelling ctx
// stops launching new per-file work; in-flight files finish and their
// results are kept.
func (e *Engine) LintPaths(ctx context.Context, patterns []string, opts Options, concurrency int) (*BatchReport, error) {
	files, err := e.ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*FileReport, len(files))
	g := &errgroup.Group{}
	g.SetLimit(concurrency)

	canceled := false
	for i, file := range files {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		i, file := i, file
		g.Go(func() error {
			results[i] = e.LintFile(file, opts)
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchReport{Canceled: canceled}
	for _, r := range results {
		if r != nil {
			batch.add(r)
		}
	}
	return batch, nil
}
