// Package rules holds the rule registry and the per-file dispatcher that
// drives every enabled rule over one depth-first traversal of a document.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/fix"
	"github.com/atiptools/atiplint/internal/probe"
)

// Rule category constants.
const (
	CategorySchema     = "schema"
	CategoryEffects    = "effects"
	CategoryTrust      = "trust"
	CategoryStyle      = "style"
	CategoryExecutable = "executable"
)

// Issue is one rule finding against one node.
type Issue struct {
	RuleID      string
	Severity    config.Severity
	Message     string
	Path        atip.Path
	Fix         *fix.Edit // available fix, not necessarily applied
	Suggestions []string
}

// Visitor maps semantic node kinds to callbacks. Nil callbacks are skipped.
type Visitor struct {
	Document func(*atip.Document, atip.Path)
	Command  func(*atip.Command, atip.Path)
	Argument func(*atip.Argument, atip.Path)
	Option   func(*atip.Option, atip.Path)
	Effects  func(*atip.Effects, atip.Path)
	Trust    func(*atip.Trust, atip.Path)
	Pattern  func(*atip.Pattern, atip.Path)
}

// Context is handed to a rule factory once per (rule, file). Any state the
// factory closes over is scoped to that single invocation and never leaks
// across files or concurrent runs.
type Context struct {
	File     string
	Options  map[string]any
	Prober   probe.Prober // nil unless executable checks are enabled

	ruleID   string
	severity config.Severity
	sink     func(Issue)
}

// Report appends an issue to the rule's running issue list. Rule id and
// resolved severity are filled in; the rule supplies message, path, and an
// optional fix.
func (c *Context) Report(iss Issue) {
	iss.RuleID = c.ruleID
	iss.Severity = c.severity
	c.sink(iss)
}

// Reportf is Report with a formatted message.
func (c *Context) Reportf(path atip.Path, format string, args ...any) {
	c.Report(Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// IntOption returns an integer option, falling back to def. JSON numbers
// arrive as float64.
func (c *Context) IntOption(name string, def int) int {
	switch v := c.Options[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// BoolOption returns a boolean option, falling back to def.
func (c *Context) BoolOption(name string, def bool) bool {
	if v, ok := c.Options[name].(bool); ok {
		return v
	}
	return def
}

// StringsOption returns a string-list option, falling back to def.
func (c *Context) StringsOption(name string, def []string) []string {
	switch v := c.Options[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return def
}

// Rule is a capability bundle: metadata plus a factory producing a fresh
// visitor (and fresh closure state) per file.
type Rule struct {
	ID              string
	Category        string
	Description     string
	Fixable         bool
	DefaultSeverity config.Severity
	Factory         func(*Context) Visitor
}

var registry = map[string]*Rule{}

// Register adds a rule definition. Duplicate ids are a programming error.
func Register(r *Rule) {
	if _, exists := registry[r.ID]; exists {
		panic("rules: duplicate rule id " + r.ID)
	}
	registry[r.ID] = r
}

// Get returns the rule registered under id, or nil.
func Get(id string) *Rule { return registry[id] }

// All returns every registered rule sorted by id.
func All() []*Rule {
	out := make([]*Rule, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// pathKey renders a path for cross-reference messages inside one rule.
func pathKey(p atip.Path) string {
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = fmt.Sprintf("%v", step)
	}
	return strings.Join(parts, "\x00")
}
