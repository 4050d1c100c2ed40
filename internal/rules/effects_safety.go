package rules

import (
	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
)

func init() {
	Register(&Rule{
		ID:              "destructive-needs-reversible",
		Category:        CategoryEffects,
		Description:     "Destructive operations must state whether they are reversible.",
		Fixable:         true,
		DefaultSeverity: config.SeverityWarn,
		Factory:         destructiveNeedsReversible,
	})
	Register(&Rule{
		ID:              "billable-needs-non-idempotent-check",
		Category:        CategoryEffects,
		Description:     "Billable operations marked idempotent invite cost-repeating retries.",
		DefaultSeverity: config.SeverityWarn,
		Factory:         billableIdempotent,
	})
}

func destructiveNeedsReversible(ctx *Context) Visitor {
	flagCombo := ctx.BoolOption("flagReversibleDestructive", false)

	return Visitor{
		Effects: func(e *atip.Effects, path atip.Path) {
			if e.Destructive == nil || !*e.Destructive {
				return
			}
			if e.Syntax.Member("reversible") == nil {
				ctx.Report(Issue{
					Path:    path,
					Message: "destructive operation does not declare \"reversible\"",
					Fix:     insertIntoObject("destructive-needs-reversible", e.Syntax, `"reversible": false`),
				})
				return
			}
			if flagCombo && e.Reversible != nil && *e.Reversible {
				ctx.Reportf(path,
					"destructive together with reversible: true is an unusual combination; double-check the declaration")
			}
		},
	}
}

func billableIdempotent(ctx *Context) Visitor {
	return Visitor{
		Effects: func(e *atip.Effects, path atip.Path) {
			if e.Cost == nil || e.Cost.Billable == nil || !*e.Cost.Billable {
				return
			}
			if e.Idempotent != nil && *e.Idempotent {
				ctx.Reportf(path.Child("cost").Child("billable"),
					"billable operation marked idempotent: retries may repeat cost")
			}
		},
	}
}
