package typedargs

import (
	"strings"

	"github.com/spf13/pflag"
)

// NArgs controls how many command-line tokens a positional argument
// consumes. The zero value consumes exactly one token; a positive
// value consumes exactly that many.
type NArgs int

const (
	// NArgsOptional consumes zero or one token.
	NArgsOptional NArgs = -1
	// NArgsAny consumes zero or more tokens.
	NArgsAny NArgs = -2
	// NArgsAtLeastOne consumes one or more tokens.
	NArgsAtLeastOne NArgs = -3
)

// ArgumentSpec is an inert description of a single argument: its flag
// tokens plus the configuration forwarded to the underlying flag set
// when the parser is built. Specs are created by the typed factory
// functions and configured through the chain methods; they perform no
// work until replayed by Namespace.Build.
type ArgumentSpec struct {
	flags      []string
	value      pflag.Value
	noOptDef   string
	defText    string
	hasDefault bool
	required   bool
	choices    []string
	help       string
	metavar    string
	dest       string
	hidden     bool
	persistent bool
	nargs      NArgs
	viperKey   string
}

func newArgument(value pflag.Value, flags []string) *ArgumentSpec {
	return &ArgumentSpec{flags: flags, value: value}
}

// StringVar declares an argument that stores its token into p.
func StringVar(p *string, flags ...string) *ArgumentSpec {
	return newArgument(newStringValue(p), flags)
}

// BoolVar declares a flag that stores true into p when present, the
// store_true idiom. Pair it with Default("true") and NoOptDefault
// ("false") for the inverse.
func BoolVar(p *bool, flags ...string) *ArgumentSpec {
	a := newArgument(newBoolValue(p), flags)
	a.noOptDef = "true"
	return a
}

// IntVar declares an argument that parses its token into p.
// Tokens are parsed with base detection, so 0x1f is accepted.
func IntVar(p *int, flags ...string) *ArgumentSpec {
	return newArgument(newIntValue(p), flags)
}

// Int64Var declares an argument that parses its token into p.
func Int64Var(p *int64, flags ...string) *ArgumentSpec {
	return newArgument(newInt64Value(p), flags)
}

// Float64Var declares an argument that parses its token into p.
func Float64Var(p *float64, flags ...string) *ArgumentSpec {
	return newArgument(newFloat64Value(p), flags)
}

// CountVar declares a flag that increments p on each occurrence, the
// count idiom (-v -v -v).
func CountVar(p *int, flags ...string) *ArgumentSpec {
	a := newArgument(newCountValue(p), flags)
	a.noOptDef = "+1"
	return a
}

// StringSliceVar declares an argument that appends one token per
// occurrence, the append idiom.
func StringSliceVar(p *[]string, flags ...string) *ArgumentSpec {
	return newArgument(newStringSliceValue(p), flags)
}

// IntSliceVar declares an argument that parses and appends one token
// per occurrence.
func IntSliceVar(p *[]int, flags ...string) *ArgumentSpec {
	return newArgument(newIntSliceValue(p), flags)
}

// Var declares an argument backed by a custom pflag.Value, for
// conversions the builtin factories do not cover.
func Var(value pflag.Value, flags ...string) *ArgumentSpec {
	return newArgument(value, flags)
}

// Default sets the textual default, converted through the argument's
// value exactly as a command-line token would be.
func (a *ArgumentSpec) Default(text string) *ArgumentSpec {
	a.defText = text
	a.hasDefault = true
	return a
}

// Required marks the flag as mandatory.
func (a *ArgumentSpec) Required() *ArgumentSpec {
	a.required = true
	return a
}

// Choices restricts the argument to the given tokens.
func (a *ArgumentSpec) Choices(allowed ...string) *ArgumentSpec {
	a.choices = allowed
	return a
}

// Help sets the usage line for the argument.
func (a *ArgumentSpec) Help(text string) *ArgumentSpec {
	a.help = text
	return a
}

// Metavar sets the value placeholder shown in usage output.
func (a *ArgumentSpec) Metavar(name string) *ArgumentSpec {
	a.metavar = name
	return a
}

// Dest declares the destination name explicitly. It must match the
// name the argument is registered under; a mismatch is a
// configuration error reported before any parser is built.
func (a *ArgumentSpec) Dest(name string) *ArgumentSpec {
	a.dest = name
	return a
}

// Hidden hides the flag from usage output.
func (a *ArgumentSpec) Hidden() *ArgumentSpec {
	a.hidden = true
	return a
}

// Persistent registers the flag on the command's persistent flag set,
// so sub-commands inherit it.
func (a *ArgumentSpec) Persistent() *ArgumentSpec {
	a.persistent = true
	return a
}

// NoOptDefault sets the value assumed when the flag appears without a
// token (--flag instead of --flag=x), the store_const idiom.
func (a *ArgumentSpec) NoOptDefault(text string) *ArgumentSpec {
	a.noOptDef = text
	return a
}

// SetNArgs sets how many tokens a positional argument consumes.
func (a *ArgumentSpec) SetNArgs(n NArgs) *ArgumentSpec {
	a.nargs = n
	return a
}

// ViperKey binds the built flag to the given viper key, so config
// files and environment variables can supply its value.
func (a *ArgumentSpec) ViperKey(key string) *ArgumentSpec {
	a.viperKey = key
	return a
}

// positional reports whether the spec names a positional argument: a
// single token with no dash prefix.
func (a *ArgumentSpec) positional() bool {
	return len(a.flags) == 1 && !strings.HasPrefix(a.flags[0], "-")
}

// effectiveValue wraps the bound value with choice validation when
// choices are declared.
func (a *ArgumentSpec) effectiveValue() pflag.Value {
	if len(a.choices) > 0 {
		return &choiceValue{Value: a.value, allowed: a.choices}
	}
	return a.value
}

type namedArg struct {
	name string
	arg  *ArgumentSpec
}

func (namedArg) isSpecEntry()         {}
func (*GroupSpec) isSpecEntry()       {}
func (*MutexGroupSpec) isSpecEntry()  {}
func (*SubcommandsSpec) isSpecEntry() {}

type specEntry interface {
	isSpecEntry()
}

// GroupSpec is an inert description of a titled argument group. Its
// members are registered through Add and attached to the group, not
// to the enclosing namespace, when the parser is built.
type GroupSpec struct {
	title       string
	description string
	entries     []namedArg
	ns          *Namespace
}

// Add registers an argument as a member of the group. The same
// destination validation as Namespace.Add applies.
func (g *GroupSpec) Add(name string, arg *ArgumentSpec) *GroupSpec {
	g.ns.validate(name, arg)
	g.entries = append(g.entries, namedArg{name: name, arg: arg})
	return g
}

// MutexGroupSpec is a group whose members the underlying parser will
// refuse to accept together.
type MutexGroupSpec struct {
	GroupSpec
	required bool
}

// Add registers an argument as a member of the mutually exclusive
// group.
func (g *MutexGroupSpec) Add(name string, arg *ArgumentSpec) *MutexGroupSpec {
	g.GroupSpec.Add(name, arg)
	return g
}

// Required demands that exactly one member is supplied per
// invocation.
func (g *MutexGroupSpec) Required() *MutexGroupSpec {
	g.required = true
	return g
}

// SubcommandsSpec is an inert description of a set of named
// sub-commands.
type SubcommandsSpec struct {
	title    string
	required bool
	dest     *string
	commands []*CommandSpec
}

// Command declares a sub-command and returns its spec, which carries
// a complete nested namespace for the sub-command's own arguments.
func (s *SubcommandsSpec) Command(name, description string) *CommandSpec {
	c := &CommandSpec{name: name, description: description}
	c.Namespace.prog = name
	s.commands = append(s.commands, c)
	return c
}

// Dest stores the name of the chosen sub-command into p after a
// successful parse.
func (s *SubcommandsSpec) Dest(p *string) *SubcommandsSpec {
	s.dest = p
	return s
}

// Required makes invoking the parent without a sub-command an error.
func (s *SubcommandsSpec) Required() *SubcommandsSpec {
	s.required = true
	return s
}

// CommandSpec is one named sub-command. It embeds a Namespace, so
// arguments, groups, and further nested sub-commands are declared on
// it the same way as on the top level.
type CommandSpec struct {
	Namespace
	name        string
	description string
	handler     func() error
}

// Run attaches a handler invoked after a successful parse selects
// this sub-command.
func (c *CommandSpec) Run(fn func() error) *CommandSpec {
	c.handler = fn
	return c
}
