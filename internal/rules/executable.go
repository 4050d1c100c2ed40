package rules

import (
	"context"
	"time"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
)

func init() {
	Register(&Rule{
		ID:              "executable-exists",
		Category:        CategoryExecutable,
		Description:     "The documented binary should resolve on the local system.",
		DefaultSeverity: config.SeverityOff,
		Factory:         executableExists,
	})
}

// executableExists delegates to the probing collaborator. Without a prober
// the rule is inert even when enabled.
func executableExists(ctx *Context) Visitor {
	if ctx.Prober == nil {
		return Visitor{}
	}
	timeout := time.Duration(ctx.IntOption("timeoutSeconds", 5)) * time.Second

	return Visitor{
		Document: func(doc *atip.Document, path atip.Path) {
			if doc.Name == nil {
				return
			}
			if err := ctx.Prober.Probe(context.Background(), *doc.Name, timeout); err != nil {
				ctx.Reportf(path.Child("name"), "executable %q failed probe: %v", *doc.Name, err)
			}
		},
	}
}
