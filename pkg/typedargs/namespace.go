// Package typedargs is a declarative layer over the cobra/pflag
// parser stack. Argument, group, mutually-exclusive-group, and
// sub-command specs are declared once, bound to typed variables, and
// replayed in declaration order against a real *cobra.Command, so the
// parsed result is an ordinary struct whose field types the compiler
// already knows. Tokenizing, validation, help, and dispatch all stay
// with cobra and pflag.
package typedargs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var (
	// ErrDestMismatch reports an argument whose declared name cannot
	// be reconciled with the destination inferred from its flags.
	ErrDestMismatch = errors.New("argument destination does not match its declared name")
	// ErrBadSpec reports a structurally invalid argument declaration.
	ErrBadSpec = errors.New("invalid argument specification")
)

// Namespace collects argument declarations in order. It is the
// explicit, declaration-time half of the layer; Build replays it onto
// a cobra command.
type Namespace struct {
	prog         string
	short        string
	long         string
	version      string
	viper        *viper.Viper
	allowUnknown bool
	entries      []specEntry
	errs         []error
}

// Option configures a Namespace at construction time.
type Option func(*Namespace)

// Description sets the one-line description shown in help output.
func Description(s string) Option {
	return func(ns *Namespace) { ns.short = s }
}

// Long sets the long help text.
func Long(s string) Option {
	return func(ns *Namespace) { ns.long = s }
}

// Version enables the built-in --version flag with the given value.
func Version(s string) Option {
	return func(ns *Namespace) { ns.version = s }
}

// WithViper selects the viper instance used for ViperKey bindings.
// The global instance is used otherwise.
func WithViper(v *viper.Viper) Option {
	return func(ns *Namespace) { ns.viper = v }
}

// AllowUnknownFlags makes the built parser skip unrecognized flags
// instead of failing, the parse_known_args idiom.
func AllowUnknownFlags() Option {
	return func(ns *Namespace) { ns.allowUnknown = true }
}

// NewNamespace returns an empty namespace for the named program.
func NewNamespace(prog string, opts ...Option) *Namespace {
	ns := &Namespace{prog: prog}
	for _, opt := range opts {
		opt(ns)
	}
	return ns
}

// Add registers an argument under its destination name. The name is
// validated against the argument's flags immediately; violations are
// reported by Err and abort Build before any parser exists.
func (ns *Namespace) Add(name string, arg *ArgumentSpec) *Namespace {
	ns.validate(name, arg)
	ns.entries = append(ns.entries, namedArg{name: name, arg: arg})
	return ns
}

// Group declares a titled argument group in declaration order.
func (ns *Namespace) Group(title, description string) *GroupSpec {
	g := &GroupSpec{title: title, description: description, ns: ns}
	ns.entries = append(ns.entries, g)
	return g
}

// MutexGroup declares a mutually exclusive group. Title and
// description may be empty, in which case the members are not
// attached to any named group.
func (ns *Namespace) MutexGroup(title, description string) *MutexGroupSpec {
	g := &MutexGroupSpec{GroupSpec: GroupSpec{title: title, description: description, ns: ns}}
	ns.entries = append(ns.entries, g)
	return g
}

// Subcommands declares a sub-command set in declaration order.
func (ns *Namespace) Subcommands(title string) *SubcommandsSpec {
	s := &SubcommandsSpec{title: title}
	ns.entries = append(ns.entries, s)
	return s
}

// Err returns every configuration error recorded so far, or nil.
func (ns *Namespace) Err() error {
	return errors.Join(ns.errs...)
}

func (ns *Namespace) validate(name string, arg *ArgumentSpec) {
	if name == "" {
		ns.errs = append(ns.errs, fmt.Errorf("%w: empty argument name", ErrBadSpec))
		return
	}
	if arg == nil || len(arg.flags) == 0 {
		ns.errs = append(ns.errs, fmt.Errorf("%w: argument %q has no flags", ErrBadSpec, name))
		return
	}
	if arg.positional() {
		if arg.dest != "" {
			ns.errs = append(ns.errs, fmt.Errorf("%w: positional %q: dest is inferred and may not be set", ErrBadSpec, name))
			return
		}
		if arg.flags[0] != name {
			ns.errs = append(ns.errs, fmt.Errorf("%w: positional %q declared under name %q", ErrDestMismatch, arg.flags[0], name))
		}
		return
	}
	if stray, found := lo.Find(arg.flags, func(f string) bool { return !strings.HasPrefix(f, "-") }); found {
		ns.errs = append(ns.errs, fmt.Errorf("%w: argument %q mixes flag %q with option strings", ErrBadSpec, name, stray))
		return
	}
	if arg.dest != "" && arg.dest != name {
		ns.errs = append(ns.errs, fmt.Errorf("%w: dest %q must match name %q", ErrDestMismatch, arg.dest, name))
		return
	}
	// Short-only arguments have no derivable destination and are not
	// validated; the declared name becomes the flag's primary name.
	if derived, ok := deriveDest(arg.flags); ok && derived != name {
		ns.errs = append(ns.errs, fmt.Errorf("%w: flags %v imply destination %q, declared as %q", ErrDestMismatch, arg.flags, derived, name))
	}
}

// deriveDest infers the destination from the longest long flag, with
// dashes mapped to underscores.
func deriveDest(flags []string) (string, bool) {
	longs := lo.Filter(flags, func(f string, _ int) bool { return strings.HasPrefix(f, "--") })
	if len(longs) == 0 {
		return "", false
	}
	longest := lo.MaxBy(longs, func(a, b string) bool { return len(a) > len(b) })
	return strings.ReplaceAll(strings.TrimPrefix(longest, "--"), "-", "_"), true
}
