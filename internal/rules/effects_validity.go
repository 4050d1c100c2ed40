package rules

import (
	"sort"
	"strings"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/syntax"
)

func init() {
	Register(&Rule{
		ID:              "effects-value-validity",
		Category:        CategoryEffects,
		Description:     "Effects fields must have the right types, closed-set values, and duration grammar.",
		DefaultSeverity: config.SeverityError,
		Factory:         effectsValidity,
	})
}

func effectsValidity(ctx *Context) Visitor {
	return Visitor{
		Effects: func(e *atip.Effects, path atip.Path) {
			n := e.Syntax
			for _, key := range []string{"network", "subprocess", "idempotent", "reversible", "destructive"} {
				checkBoolMember(ctx, n, path, key)
			}

			if fs := objectMember(ctx, n, path, "filesystem"); fs != nil {
				base := path.Child("filesystem")
				for _, key := range []string{"read", "write", "delete"} {
					checkBoolMember(ctx, fs, base, key)
				}
			}
			if in := objectMember(ctx, n, path, "interactive"); in != nil {
				base := path.Child("interactive")
				checkEnumMember(ctx, in, base, "stdin", atip.StdinModes)
				checkBoolMember(ctx, in, base, "prompts")
				checkBoolMember(ctx, in, base, "tty")
			}
			if c := objectMember(ctx, n, path, "cost"); c != nil {
				base := path.Child("cost")
				checkEnumMember(ctx, c, base, "estimate", atip.CostEstimates)
				checkBoolMember(ctx, c, base, "billable")
			}
			if d := objectMember(ctx, n, path, "duration"); d != nil {
				base := path.Child("duration")
				checkDurationMember(ctx, d, base, "typical")
				checkDurationMember(ctx, d, base, "timeout")
			}
		},
	}
}

// objectMember returns the member as an object node, reporting when the
// member exists but has the wrong kind.
func objectMember(ctx *Context, n *syntax.Node, base atip.Path, key string) *syntax.Node {
	m := n.Member(key)
	if m == nil {
		return nil
	}
	if m.Kind != syntax.KindObject {
		ctx.Reportf(base.Child(key), "%q must be an object, got %s", key, m.Kind)
		return nil
	}
	return m
}

func checkBoolMember(ctx *Context, n *syntax.Node, base atip.Path, key string) {
	m := n.Member(key)
	if m != nil && m.Kind != syntax.KindBool {
		ctx.Reportf(base.Child(key), "%q must be a boolean, got %s", key, m.Kind)
	}
}

func checkEnumMember(ctx *Context, n *syntax.Node, base atip.Path, key string, allowed map[string]bool) {
	m := n.Member(key)
	if m == nil {
		return
	}
	if m.Kind != syntax.KindString {
		ctx.Reportf(base.Child(key), "%q must be a string, got %s", key, m.Kind)
		return
	}
	if !allowed[m.Str] {
		ctx.Reportf(base.Child(key), "invalid value %q for %q (allowed: %s)",
			m.Str, key, joinSorted(allowed))
	}
}

func checkDurationMember(ctx *Context, n *syntax.Node, base atip.Path, key string) {
	m := n.Member(key)
	if m == nil {
		return
	}
	if m.Kind != syntax.KindString {
		ctx.Reportf(base.Child(key), "%q must be a duration string, got %s", key, m.Kind)
		return
	}
	if !atip.DurationPattern.MatchString(m.Str) {
		ctx.Reportf(base.Child(key),
			"invalid duration %q (expected an integer or range with an s/m/h unit, or %q)", m.Str, "instant")
	}
}

func joinSorted(set map[string]bool) string {
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ", ")
}
