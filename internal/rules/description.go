package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/syntax"
)

func init() {
	Register(&Rule{
		ID:              "description-quality",
		Category:        CategoryStyle,
		Description:     "Descriptions must be real prose: trimmed, sized, placeholder-free, and capitalized.",
		Fixable:         true,
		DefaultSeverity: config.SeverityWarn,
		Factory:         descriptionQuality,
	})
}

var defaultPlaceholders = []string{"todo", "tbd", "fixme", "xxx", "placeholder"}

func descriptionQuality(ctx *Context) Visitor {
	minLength := ctx.IntOption("minLength", 10)
	maxLength := ctx.IntOption("maxLength", 500)
	placeholders := ctx.StringsOption("placeholders", defaultPlaceholders)
	requireCapital := ctx.BoolOption("requireLeadingCapital", true)
	requirePunct := ctx.BoolOption("requireEndPunctuation", false)

	// The first violation on a node suppresses the remaining checks for
	// that node within this rule; a whitespace finding should not also
	// surface as a length finding for the same text.
	check := func(desc *string, owner *syntax.Node, base atip.Path) {
		if desc == nil || owner == nil {
			return
		}
		node := owner.Member("description")
		if node == nil || node.Kind != syntax.KindString {
			return
		}
		path := base.Child("description")
		s := *desc

		if trimmed := strings.TrimSpace(s); trimmed != s {
			ctx.Report(Issue{
				Path:    path,
				Message: "description has leading or trailing whitespace",
				Fix:     replaceString("description-quality", node, trimmed),
			})
			return
		}
		if n := utf8.RuneCountInString(s); n < minLength {
			ctx.Reportf(path, "description is too short (%d of %d characters)", n, minLength)
			return
		} else if n > maxLength {
			ctx.Reportf(path, "description is too long (%d of at most %d characters)", n, maxLength)
			return
		}
		lower := strings.ToLower(s)
		for _, ph := range placeholders {
			if ph != "" && strings.Contains(lower, strings.ToLower(ph)) {
				ctx.Reportf(path, "description contains placeholder text %q", ph)
				return
			}
		}
		first, _ := utf8.DecodeRuneInString(s)
		if requireCapital && unicode.IsLetter(first) && !unicode.IsUpper(first) {
			ctx.Reportf(path, "description should start with a capital letter")
			return
		}
		if requirePunct && s != "" && !strings.ContainsAny(s[len(s)-1:], ".!?") {
			ctx.Reportf(path, "description should end with punctuation")
		}
	}

	return Visitor{
		Document: func(doc *atip.Document, path atip.Path) {
			check(doc.Description, doc.Syntax, path)
		},
		Command: func(cmd *atip.Command, path atip.Path) {
			check(cmd.Description, cmd.Syntax, path)
		},
		Argument: func(arg *atip.Argument, path atip.Path) {
			check(arg.Description, arg.Syntax, path)
		},
		Option: func(opt *atip.Option, path atip.Path) {
			check(opt.Description, opt.Syntax, path)
		},
		Pattern: func(p *atip.Pattern, path atip.Path) {
			check(p.Description, p.Syntax, path)
		},
	}
}
