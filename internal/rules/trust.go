package rules

import (
	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
)

func init() {
	Register(&Rule{
		ID:              "trust-requirements",
		Category:        CategoryTrust,
		Description:     "Higher trust tiers carry stricter documentation obligations.",
		DefaultSeverity: config.SeverityWarn,
		Factory:         trustRequirements,
	})
}

// trustRequirements keeps the document's trust source in per-file closure
// state so command visits can apply tier-dependent checks. The document
// node is always visited before any command.
func trustRequirements(ctx *Context) Visitor {
	source := ""

	return Visitor{
		Document: func(doc *atip.Document, path atip.Path) {
			if doc.Trust == nil || doc.Trust.Source == nil {
				return
			}
			source = *doc.Trust.Source
			if _, known := atip.TrustTiers[source]; !known {
				ctx.Reportf(doc.Trust.Path.Child("source"), "unknown trust tier %q", source)
				return
			}
			switch source {
			case "vendor":
				if doc.Homepage == nil {
					ctx.Reportf(path.Child("homepage"), "trust source %q requires a homepage", "vendor")
				}
				if doc.Version == nil {
					ctx.Reportf(path.Child("version"), "trust source %q requires a version", "vendor")
				}
			case "inferred":
				if doc.Trust.Verified != nil && *doc.Trust.Verified {
					ctx.Reportf(doc.Trust.Path.Child("verified"),
						"trust source %q cannot be verified", "inferred")
				}
			}
		},
		Command: func(cmd *atip.Command, path atip.Path) {
			if source != "native" {
				return
			}
			if cmd.Effects == nil && !cmd.IsGroup() {
				ctx.Reportf(path.Child("effects"),
					"trust source %q requires every command to declare effects", "native")
			}
		},
	}
}
