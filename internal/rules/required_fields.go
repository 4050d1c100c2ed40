package rules

import (
	"github.com/atiptools/atiplint/internal/atip"
	"github.com/atiptools/atiplint/internal/config"
)

func init() {
	Register(&Rule{
		ID:              "required-fields",
		Category:        CategorySchema,
		Description:     "Documents, commands, arguments, and options must carry their required descriptive fields.",
		DefaultSeverity: config.SeverityError,
		Factory:         requiredFields,
	})
}

func requiredFields(ctx *Context) Visitor {
	return Visitor{
		Document: func(doc *atip.Document, path atip.Path) {
			if doc.Name == nil {
				ctx.Reportf(path.Child("name"), "document is missing required field %q", "name")
			}
			if doc.Version == nil {
				ctx.Reportf(path.Child("version"), "document is missing required field %q", "version")
			}
			if doc.Description == nil {
				ctx.Reportf(path.Child("description"), "document is missing required field %q", "description")
			}
		},
		Command: func(cmd *atip.Command, path atip.Path) {
			if cmd.Description == nil {
				ctx.Reportf(path.Child("description"), "command is missing required field %q", "description")
			}
		},
		Argument: func(arg *atip.Argument, path atip.Path) {
			checkInputFields(ctx, arg, path, "argument")
		},
		Option: func(opt *atip.Option, path atip.Path) {
			checkInputFields(ctx, &opt.Argument, path, "option")
			if len(opt.Flags) == 0 {
				ctx.Reportf(path.Child("flags"), "option requires a non-empty %q list", "flags")
			}
		},
	}
}

// checkInputFields validates the fields shared by arguments and options.
func checkInputFields(ctx *Context, a *atip.Argument, path atip.Path, kind string) {
	if a.Name == nil {
		ctx.Reportf(path.Child("name"), "%s is missing required field %q", kind, "name")
	}
	switch {
	case a.Type == nil:
		ctx.Reportf(path.Child("type"), "%s is missing required field %q", kind, "type")
	case !atip.ArgumentTypes[*a.Type]:
		ctx.Reportf(path.Child("type"), "%s has invalid type %q", kind, *a.Type)
	case *a.Type == "enum" && len(a.Enum) == 0:
		ctx.Reportf(path.Child("enum"), "%s of type enum requires a non-empty %q list", kind, "enum")
	}
	if a.Description == nil {
		ctx.Reportf(path.Child("description"), "%s is missing required field %q", kind, "description")
	}
}
