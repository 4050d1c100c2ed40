package atip

import "github.com/atiptools/atiplint/internal/syntax"

// Project walks a parsed syntax tree into the typed document tree. It is
// deliberately tolerant: fields with an unexpected JSON kind are projected
// as absent, so rules can still inspect the raw syntax node and report the
// mismatch with an exact sub-path. Absence of an optional field is always
// represented as absence — defaulting is a rule's responsibility.
func Project(root *syntax.Node) *Document {
	doc := &Document{Path: Path{}, Syntax: root}
	if root == nil || root.Kind != syntax.KindObject {
		return doc
	}

	doc.Protocol = projectProtocol(root.Member("protocol"))
	doc.Name = strField(root, "name")
	doc.Version = strField(root, "version")
	doc.Description = strField(root, "description")
	doc.Homepage = strField(root, "homepage")

	if tn := root.Member("trust"); tn != nil && tn.Kind == syntax.KindObject {
		doc.Trust = projectTrust(tn, doc.Path.Child("trust"))
	}
	if en := root.Member("effects"); en != nil && en.Kind == syntax.KindObject {
		doc.Effects = projectEffects(en, doc.Path.Child("effects"))
	}

	if cn := root.Member("commands"); cn != nil && cn.Kind == syntax.KindObject {
		base := doc.Path.Child("commands")
		for _, m := range cn.Members {
			doc.Commands = append(doc.Commands, NamedCommand{
				Name:    m.Key,
				Command: projectCommand(m.Value, base.Child(m.Key)),
			})
		}
	}

	if gn := root.Member("globalOptions"); gn != nil && gn.Kind == syntax.KindArray {
		base := doc.Path.Child("globalOptions")
		for i, el := range gn.Elems {
			doc.GlobalOptions = append(doc.GlobalOptions, projectOption(el, base.Child(i)))
		}
	}

	if pn := root.Member("patterns"); pn != nil && pn.Kind == syntax.KindArray {
		base := doc.Path.Child("patterns")
		for i, el := range pn.Elems {
			doc.Patterns = append(doc.Patterns, projectPattern(el, base.Child(i)))
		}
	}

	return doc
}

func projectProtocol(n *syntax.Node) *Protocol {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case syntax.KindString:
		return &Protocol{Version: n.Str}
	case syntax.KindObject:
		p := &Protocol{}
		if v := strField(n, "version"); v != nil {
			p.Version = *v
		}
		p.Features = strSlice(n.Member("features"))
		if v := strField(n, "minAgentVersion"); v != nil {
			p.MinAgentVersion = *v
		}
		return p
	}
	return nil
}

func projectCommand(n *syntax.Node, path Path) *Command {
	cmd := &Command{Path: path, Syntax: n}
	if n == nil || n.Kind != syntax.KindObject {
		return cmd
	}
	cmd.Description = strField(n, "description")
	cmd.Examples = strSlice(n.Member("examples"))

	if sn := n.Member("commands"); sn != nil && sn.Kind == syntax.KindObject {
		base := path.Child("commands")
		for _, m := range sn.Members {
			cmd.Subcommands = append(cmd.Subcommands, NamedCommand{
				Name:    m.Key,
				Command: projectCommand(m.Value, base.Child(m.Key)),
			})
		}
	}
	if an := n.Member("arguments"); an != nil && an.Kind == syntax.KindArray {
		base := path.Child("arguments")
		for i, el := range an.Elems {
			cmd.Arguments = append(cmd.Arguments, projectArgument(el, base.Child(i)))
		}
	}
	if on := n.Member("options"); on != nil && on.Kind == syntax.KindArray {
		base := path.Child("options")
		for i, el := range on.Elems {
			cmd.Options = append(cmd.Options, projectOption(el, base.Child(i)))
		}
	}
	if en := n.Member("effects"); en != nil && en.Kind == syntax.KindObject {
		cmd.Effects = projectEffects(en, path.Child("effects"))
	}
	return cmd
}

func projectArgument(n *syntax.Node, path Path) *Argument {
	arg := &Argument{Path: path, Syntax: n}
	fillArgument(arg, n)
	return arg
}

func fillArgument(arg *Argument, n *syntax.Node) {
	if n == nil || n.Kind != syntax.KindObject {
		return
	}
	arg.Name = strField(n, "name")
	arg.Type = strField(n, "type")
	arg.Description = strField(n, "description")
	arg.Required = boolField(n, "required")
	arg.Variadic = boolField(n, "variadic")
	arg.Enum = strSlice(n.Member("enum"))
	if dn := n.Member("default"); dn != nil {
		arg.Default = scalarValue(dn)
	}
}

func projectOption(n *syntax.Node, path Path) *Option {
	opt := &Option{Argument: Argument{Path: path, Syntax: n}}
	fillArgument(&opt.Argument, n)
	if n != nil && n.Kind == syntax.KindObject {
		opt.Flags = strSlice(n.Member("flags"))
	}
	return opt
}

func projectEffects(n *syntax.Node, path Path) *Effects {
	e := &Effects{Path: path, Syntax: n}
	e.Network = boolField(n, "network")
	e.Subprocess = boolField(n, "subprocess")
	e.Idempotent = boolField(n, "idempotent")
	e.Reversible = boolField(n, "reversible")
	e.Destructive = boolField(n, "destructive")
	if fn := n.Member("filesystem"); fn != nil && fn.Kind == syntax.KindObject {
		e.Filesystem = &Filesystem{
			Read:   boolField(fn, "read"),
			Write:  boolField(fn, "write"),
			Delete: boolField(fn, "delete"),
		}
	}
	if in := n.Member("interactive"); in != nil && in.Kind == syntax.KindObject {
		e.Interactive = &Interactive{
			Stdin:   strField(in, "stdin"),
			Prompts: boolField(in, "prompts"),
			TTY:     boolField(in, "tty"),
		}
	}
	if cn := n.Member("cost"); cn != nil && cn.Kind == syntax.KindObject {
		e.Cost = &Cost{
			Estimate: strField(cn, "estimate"),
			Billable: boolField(cn, "billable"),
		}
	}
	if dn := n.Member("duration"); dn != nil && dn.Kind == syntax.KindObject {
		e.Duration = &Duration{
			Typical: strField(dn, "typical"),
			Timeout: strField(dn, "timeout"),
		}
	}
	return e
}

func projectTrust(n *syntax.Node, path Path) *Trust {
	return &Trust{
		Path:        path,
		Syntax:      n,
		Source:      strField(n, "source"),
		Verified:    boolField(n, "verified"),
		Checksum:    strField(n, "checksum"),
		Signer:      strField(n, "signer"),
		Attestation: strField(n, "attestation"),
	}
}

func projectPattern(n *syntax.Node, path Path) *Pattern {
	p := &Pattern{Path: path, Syntax: n}
	if n == nil || n.Kind != syntax.KindObject {
		return p
	}
	p.Name = strField(n, "name")
	p.Description = strField(n, "description")
	p.Tags = strSlice(n.Member("tags"))
	p.Executable = boolField(n, "executable")
	if sn := n.Member("steps"); sn != nil && sn.Kind == syntax.KindArray {
		for _, el := range sn.Elems {
			step := PatternStep{}
			if el.Kind == syntax.KindObject {
				step.Command = strField(el, "command")
				step.Description = strField(el, "description")
			}
			p.Steps = append(p.Steps, step)
		}
	}
	if vn := n.Member("variables"); vn != nil && vn.Kind == syntax.KindObject {
		p.Variables = make(map[string]any, len(vn.Members))
		for _, m := range vn.Members {
			p.Variables[m.Key] = scalarValue(m.Value)
		}
	}
	return p
}

func strField(n *syntax.Node, key string) *string {
	if n == nil {
		return nil
	}
	m := n.Member(key)
	if m == nil || m.Kind != syntax.KindString {
		return nil
	}
	s := m.Str
	return &s
}

func boolField(n *syntax.Node, key string) *bool {
	if n == nil {
		return nil
	}
	m := n.Member(key)
	if m == nil || m.Kind != syntax.KindBool {
		return nil
	}
	b := m.Bool
	return &b
}

func strSlice(n *syntax.Node) []string {
	if n == nil || n.Kind != syntax.KindArray {
		return nil
	}
	out := make([]string, 0, len(n.Elems))
	for _, el := range n.Elems {
		if el.Kind == syntax.KindString {
			out = append(out, el.Str)
		}
	}
	return out
}

func scalarValue(n *syntax.Node) any {
	switch n.Kind {
	case syntax.KindString:
		return n.Str
	case syntax.KindNumber:
		return n.Num
	case syntax.KindBool:
		return n.Bool
	default:
		return nil
	}
}
