// Package atip defines the typed model of an ATIP document — a JSON
// metadata file describing a CLI tool's callable surface and declared side
// effects for agent consumption — and the projector that builds it from a
// syntax tree.
package atip

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atiptools/atiplint/internal/syntax"
)

// Path is the structural address of a node: property names (string) and
// array indices (int), used uniformly for diagnostics and fix targeting.
type Path []any

// Child returns a new Path with step appended. The receiver is not mutated;
// paths are shared across nodes and must stay immutable.
func (p Path) Child(step any) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for _, step := range p {
		switch s := step.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprintf(&b, "%v", s)
		}
	}
	return b.String()
}

// Equal reports whether two paths address the same node.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// TrustTiers is the fixed total order of provenance tiers, least to most
// trusted.
var TrustTiers = map[string]int{
	"inferred":  0,
	"user":      1,
	"community": 2,
	"org":       3,
	"vendor":    4,
	"native":    5,
}

// CostEstimates is the closed value set for effects.cost.estimate.
var CostEstimates = map[string]bool{
	"free":   true,
	"low":    true,
	"medium": true,
	"high":   true,
}

// StdinModes is the closed value set for effects.interactive.stdin.
var StdinModes = map[string]bool{
	"none":     true,
	"optional": true,
	"required": true,
}

// ArgumentTypes is the closed value set for argument/option types.
var ArgumentTypes = map[string]bool{
	"string":    true,
	"integer":   true,
	"number":    true,
	"boolean":   true,
	"file":      true,
	"directory": true,
	"url":       true,
	"enum":      true,
	"array":     true,
}

// DurationPattern matches the duration grammar: an integer or integer range
// with an s/m/h unit, or the literal "instant".
var DurationPattern = regexp.MustCompile(`^(?:[0-9]+(?:-[0-9]+)?[smh]|instant)$`)

// Protocol is the protocol-version descriptor, given either as a plain
// string or as an object.
type Protocol struct {
	Version         string
	Features        []string
	MinAgentVersion string
}

// Document is the root of the semantic tree.
type Document struct {
	Path   Path
	Syntax *syntax.Node

	Protocol      *Protocol
	Name          *string
	Version       *string
	Description   *string
	Homepage      *string
	Trust         *Trust
	Effects       *Effects
	Commands      []NamedCommand
	GlobalOptions []*Option
	Patterns      []*Pattern
}

// NamedCommand pairs a command with its key in the enclosing commands map.
// Declaration order from the source text is preserved.
type NamedCommand struct {
	Name    string
	Command *Command
}

// Command describes one callable command. Subcommands nest without bound.
type Command struct {
	Path   Path
	Syntax *syntax.Node

	Description *string
	Subcommands []NamedCommand
	Arguments   []*Argument
	Options     []*Option
	Effects     *Effects
	Examples    []string
}

// IsGroup reports whether the command only groups subcommands. Groups are
// exempt from leaf-only rules such as effects-presence.
func (c *Command) IsGroup() bool { return len(c.Subcommands) > 0 }

// Argument is a positional command input.
type Argument struct {
	Path   Path
	Syntax *syntax.Node

	Name        *string
	Type        *string
	Description *string
	Required    *bool
	Variadic    *bool
	Default     any
	Enum        []string
}

// Option is a flagged command input. Required defaults to false, unlike
// arguments; neither default is applied here — defaulting is rule business.
type Option struct {
	Argument
	Flags []string
}

// Filesystem declares filesystem access.
type Filesystem struct {
	Read   *bool
	Write  *bool
	Delete *bool
}

// Interactive declares interactivity requirements.
type Interactive struct {
	Stdin   *string
	Prompts *bool
	TTY     *bool
}

// Cost declares monetary cost characteristics.
type Cost struct {
	Estimate *string
	Billable *bool
}

// Duration declares expected run time.
type Duration struct {
	Typical *string
	Timeout *string
}

// Effects is the structured side-effect declaration. It may appear at the
// document level and at any command level independently; consumers use only
// the Effects attached to the node they are visiting.
type Effects struct {
	Path   Path
	Syntax *syntax.Node

	Filesystem  *Filesystem
	Network     *bool
	Subprocess  *bool
	Idempotent  *bool
	Reversible  *bool
	Destructive *bool
	Interactive *Interactive
	Cost        *Cost
	Duration    *Duration
}

// Trust is the provenance declaration.
type Trust struct {
	Path   Path
	Syntax *syntax.Node

	Source      *string
	Verified    *bool
	Checksum    *string
	Signer      *string
	Attestation *string
}

// PatternStep is one step of a usage pattern.
type PatternStep struct {
	Command     *string
	Description *string
}

// Pattern is a named multi-command usage recipe.
type Pattern struct {
	Path   Path
	Syntax *syntax.Node

	Name        *string
	Description *string
	Steps       []PatternStep
	Variables   map[string]any
	Tags        []string
	Executable  *bool
}
