package rules

import (
	"sort"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/probe"
)

// RunOptions configures one dispatch pass over one file.
type RunOptions struct {
	File   string
	Rules  map[string]config.RuleSetting
	Prober probe.Prober
}

// Run instantiates every enabled rule and drives one shared depth-first
// traversal over the document, returning all issues in traversal order.
//
// A rule resolved to severity off is never instantiated. Traversal order is
// load-bearing: the document node first, then its trust and effects, then
// global options in declared order, then every command at every depth in
// pre-order together with its arguments and options in declared order, then
// top-level patterns. Cross-node accumulation rules depend on globals
// preceding nested commands and on array elements arriving in index order.
func Run(doc *atip.Document, opts RunOptions) []Issue {
	var issues []Issue
	sink := func(iss Issue) { issues = append(issues, iss) }

	ids := make([]string, 0, len(opts.Rules))
	for id := range opts.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var visitors []Visitor
	for _, id := range ids {
		setting := opts.Rules[id]
		if setting.Severity == config.SeverityOff {
			continue
		}
		rule := Get(id)
		if rule == nil {
			continue
		}
		ctx := &Context{
			File:     opts.File,
			Options:  setting.Options,
			Prober:   opts.Prober,
			ruleID:   id,
			severity: setting.Severity,
			sink:     sink,
		}
		visitors = append(visitors, rule.Factory(ctx))
	}
	if len(visitors) == 0 {
		return nil
	}

	w := &walker{visitors: visitors}
	w.walk(doc)
	return issues
}

type walker struct {
	visitors []Visitor
}

func (w *walker) walk(doc *atip.Document) {
	for _, v := range w.visitors {
		if v.Document != nil {
			v.Document(doc, doc.Path)
		}
	}
	if doc.Trust != nil {
		for _, v := range w.visitors {
			if v.Trust != nil {
				v.Trust(doc.Trust, doc.Trust.Path)
			}
		}
	}
	if doc.Effects != nil {
		w.effects(doc.Effects)
	}
	for _, opt := range doc.GlobalOptions {
		w.option(opt)
	}
	for _, nc := range doc.Commands {
		w.command(nc.Command)
	}
	for _, p := range doc.Patterns {
		for _, v := range w.visitors {
			if v.Pattern != nil {
				v.Pattern(p, p.Path)
			}
		}
	}
}

// command visits the command before its children (pre-order), then its
// arguments and options in declared order, then its own effects, then
// recurses into subcommands.
func (w *walker) command(cmd *atip.Command) {
	for _, v := range w.visitors {
		if v.Command != nil {
			v.Command(cmd, cmd.Path)
		}
	}
	for _, arg := range cmd.Arguments {
		for _, v := range w.visitors {
			if v.Argument != nil {
				v.Argument(arg, arg.Path)
			}
		}
	}
	for _, opt := range cmd.Options {
		w.option(opt)
	}
	if cmd.Effects != nil {
		w.effects(cmd.Effects)
	}
	for _, nc := range cmd.Subcommands {
		w.command(nc.Command)
	}
}

func (w *walker) option(opt *atip.Option) {
	for _, v := range w.visitors {
		if v.Option != nil {
			v.Option(opt, opt.Path)
		}
	}
}

func (w *walker) effects(e *atip.Effects) {
	for _, v := range w.visitors {
		if v.Effects != nil {
			v.Effects(e, e.Path)
		}
	}
}
