package rules

import (
	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
)

func init() {
	Register(&Rule{
		ID:              "duplicate-flags",
		Category:        CategorySchema,
		Description:     "Flags must be unique within one options array and must not collide with global-option flags.",
		DefaultSeverity: config.SeverityError,
		Factory:         duplicateFlags,
	})
}

type flagLoc struct {
	index int
}

// duplicateFlags accumulates flags across the traversal. The dispatcher
// visits global options before any command's options, and options within
// one array in declaration order, which makes both the "already used at
// index N" and the cross-scope diagnostics stable.
func duplicateFlags(ctx *Context) Visitor {
	global := map[string]flagLoc{}
	arrays := map[string]map[string]flagLoc{}

	return Visitor{
		Option: func(opt *atip.Option, path atip.Path) {
			if len(path) == 0 {
				return
			}
			index, ok := path[len(path)-1].(int)
			if !ok {
				return
			}
			isGlobal := len(path) == 2 && path[0] == "globalOptions"
			arrKey := pathKey(path[:len(path)-1])
			seen := arrays[arrKey]
			if seen == nil {
				seen = map[string]flagLoc{}
				arrays[arrKey] = seen
			}

			for _, flag := range opt.Flags {
				if loc, dup := seen[flag]; dup {
					ctx.Reportf(path.Child("flags"),
						"flag %q already used by option at index %d", flag, loc.index)
					continue
				}
				if !isGlobal {
					if loc, collides := global[flag]; collides {
						ctx.Reportf(path.Child("flags"),
							"flag %q collides with global option at index %d", flag, loc.index)
					}
				}
				seen[flag] = flagLoc{index: index}
				if isGlobal {
					global[flag] = flagLoc{index: index}
				}
			}
		},
	}
}
