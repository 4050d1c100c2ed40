package rules

import (
	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
)

func init() {
	Register(&Rule{
		ID:              "effects-presence",
		Category:        CategoryEffects,
		Description:     "Leaf commands should declare an effects object with a minimum number of fields.",
		Fixable:         true,
		DefaultSeverity: config.SeverityWarn,
		Factory:         effectsPresence,
	})
}

func effectsPresence(ctx *Context) Visitor {
	minFields := ctx.IntOption("minFields", 1)

	return Visitor{
		Command: func(cmd *atip.Command, path atip.Path) {
			// Groups only route to subcommands and carry no effects of
			// their own.
			if cmd.IsGroup() {
				return
			}
			if cmd.Effects == nil {
				ctx.Report(Issue{
					Path:    path.Child("effects"),
					Message: "leaf command declares no effects",
					Fix:     insertIntoObject("effects-presence", cmd.Syntax, `"effects": {"idempotent": false}`),
				})
				return
			}
			if n := len(cmd.Effects.Syntax.Members); n < minFields {
				ctx.Reportf(cmd.Effects.Path,
					"effects object declares %d field(s), expected at least %d", n, minFields)
			}
		},
	}
}
