package typedargs

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// GroupAnnotation is the pflag annotation key under which a flag's
// argument-group title is recorded on the built flag set.
const GroupAnnotation = "typedargs_group"

// Build constructs a cobra command and replays every declared entry
// onto it in declaration order. Configuration errors recorded at
// declaration time are returned before any command is constructed;
// failures from cobra or pflag are returned as-is.
func (ns *Namespace) Build() (*cobra.Command, error) {
	if err := ns.Err(); err != nil {
		return nil, err
	}
	cmd := &cobra.Command{
		Use:     ns.prog,
		Short:   ns.short,
		Long:    ns.long,
		Version: ns.version,
	}
	if err := ns.Apply(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Apply replays the namespace onto an existing command, so
// declarations can extend a parser that was assembled imperatively.
func (ns *Namespace) Apply(cmd *cobra.Command) error {
	if err := ns.Err(); err != nil {
		return err
	}
	if ns.allowUnknown {
		cmd.FParseErrWhitelist.UnknownFlags = true
	}
	// Help output follows declaration order, not lexicographic order.
	cmd.Flags().SortFlags = false
	var (
		positionals  []namedArg
		requiredSubs *SubcommandsSpec
		haveSubs     bool
	)
	for _, e := range ns.entries {
		switch e := e.(type) {
		case namedArg:
			if e.arg.positional() {
				positionals = append(positionals, e)
				continue
			}
			if _, err := ns.addFlag(cmd, e.name, e.arg, ""); err != nil {
				return err
			}
		case *GroupSpec:
			for _, m := range e.entries {
				if m.arg.positional() {
					positionals = append(positionals, m)
					continue
				}
				if _, err := ns.addFlag(cmd, m.name, m.arg, e.title); err != nil {
					return err
				}
			}
		case *MutexGroupSpec:
			names := make([]string, 0, len(e.entries))
			for _, m := range e.entries {
				if m.arg.positional() {
					return fmt.Errorf("%w: positional %q cannot join a mutually exclusive group", ErrBadSpec, m.name)
				}
				fl, err := ns.addFlag(cmd, m.name, m.arg, e.title)
				if err != nil {
					return err
				}
				names = append(names, fl.Name)
			}
			if len(names) > 0 {
				cmd.MarkFlagsMutuallyExclusive(names...)
				if e.required {
					cmd.MarkFlagsOneRequired(names...)
				}
			}
		case *SubcommandsSpec:
			haveSubs = true
			if e.required {
				requiredSubs = e
			}
			if err := ns.addSubcommands(cmd, e); err != nil {
				return err
			}
		}
	}
	if len(positionals) > 0 && haveSubs {
		return fmt.Errorf("%w: positional arguments and sub-commands cannot share a command", ErrBadSpec)
	}
	if err := ns.bindPositionals(cmd, positionals); err != nil {
		return err
	}
	if requiredSubs != nil {
		cmd.RunE = func(c *cobra.Command, _ []string) error {
			return fmt.Errorf("%s: a command is required", c.Name())
		}
	}
	return nil
}

func (ns *Namespace) addFlag(cmd *cobra.Command, name string, arg *ArgumentSpec, group string) (*pflag.Flag, error) {
	long, aliases, shorthand, err := splitFlags(name, arg.flags)
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if arg.persistent {
		fs = cmd.PersistentFlags()
		fs.SortFlags = false
	}
	if fs.Lookup(long) != nil {
		return nil, fmt.Errorf("%w: flag --%s declared twice", ErrBadSpec, long)
	}
	value := arg.effectiveValue()
	fl := fs.VarPF(value, long, shorthand, usageText(arg))
	fl.Hidden = arg.hidden
	if arg.noOptDef != "" {
		fl.NoOptDefVal = arg.noOptDef
	}
	if arg.hasDefault {
		// Defaults bypass choice validation, matching the underlying
		// parser's treatment of pre-converted defaults.
		if err := arg.value.Set(arg.defText); err != nil {
			return nil, fmt.Errorf("default for --%s: %w", long, err)
		}
		if tracker, ok := arg.value.(changeTracker); ok {
			tracker.clearChanged()
		}
		fl.DefValue = arg.defText
	}
	if arg.required {
		markRequired := cmd.MarkFlagRequired
		if arg.persistent {
			markRequired = cmd.MarkPersistentFlagRequired
		}
		if err := markRequired(long); err != nil {
			return nil, err
		}
	}
	if group != "" {
		if err := fs.SetAnnotation(long, GroupAnnotation, []string{group}); err != nil {
			return nil, err
		}
	}
	for _, alias := range aliases {
		if fs.Lookup(alias) != nil {
			return nil, fmt.Errorf("%w: flag --%s declared twice", ErrBadSpec, alias)
		}
		af := fs.VarPF(value, alias, "", "alias for --"+long)
		af.Hidden = true
		af.NoOptDefVal = fl.NoOptDefVal
	}
	if arg.viperKey != "" {
		v := ns.viper
		if v == nil {
			v = viper.GetViper()
		}
		if err := v.BindPFlag(arg.viperKey, fl); err != nil {
			return nil, err
		}
	}
	return fl, nil
}

// splitFlags resolves an argument's flag tokens into the primary long
// name, hidden long aliases, and the single pflag shorthand. A
// short-only argument is registered under its declared name, which is
// also its destination.
func splitFlags(name string, flags []string) (long string, aliases []string, shorthand string, err error) {
	var longs, shorts []string
	for _, f := range flags {
		switch {
		case strings.HasPrefix(f, "--") && len(f) > 2:
			longs = append(longs, strings.TrimPrefix(f, "--"))
		case strings.HasPrefix(f, "-") && len(f) == 2:
			shorts = append(shorts, strings.TrimPrefix(f, "-"))
		default:
			return "", nil, "", fmt.Errorf("%w: malformed flag %q for argument %q", ErrBadSpec, f, name)
		}
	}
	if len(shorts) > 1 {
		return "", nil, "", fmt.Errorf("%w: argument %q declares %d shorthands, the flag set supports one", ErrBadSpec, name, len(shorts))
	}
	if len(shorts) == 1 {
		shorthand = shorts[0]
	}
	if len(longs) == 0 {
		return strings.ReplaceAll(name, "_", "-"), nil, shorthand, nil
	}
	long = lo.MaxBy(longs, func(a, b string) bool { return len(a) > len(b) })
	aliases = lo.Filter(longs, func(f string, _ int) bool { return f != long })
	return long, aliases, shorthand, nil
}

func usageText(arg *ArgumentSpec) string {
	usage := arg.help
	if arg.metavar != "" {
		// pflag picks the value placeholder out of a backquoted word.
		usage = strings.TrimSpace(usage + " `" + arg.metavar + "`")
	}
	if len(arg.choices) > 0 {
		usage = strings.TrimSpace(usage + " (one of: " + strings.Join(arg.choices, "|") + ")")
	}
	return usage
}

func (ns *Namespace) addSubcommands(cmd *cobra.Command, subs *SubcommandsSpec) error {
	if subs.title != "" && len(subs.commands) > 0 {
		cmd.AddGroup(&cobra.Group{ID: subs.title, Title: subs.title + ":"})
	}
	for _, c := range subs.commands {
		if c.viper == nil {
			c.viper = ns.viper
		}
		if ns.allowUnknown {
			c.allowUnknown = true
		}
		child := &cobra.Command{
			Use:   c.name,
			Short: c.description,
		}
		if subs.title != "" {
			child.GroupID = subs.title
		}
		if err := c.Apply(child); err != nil {
			return fmt.Errorf("command %q: %w", c.name, err)
		}
		base := child.RunE
		spec := c
		child.RunE = func(cc *cobra.Command, args []string) error {
			if subs.dest != nil {
				*subs.dest = spec.name
			}
			if base != nil {
				if err := base(cc, args); err != nil {
					return err
				}
			}
			if spec.handler != nil {
				return spec.handler()
			}
			return nil
		}
		cmd.AddCommand(child)
	}
	return nil
}

// bindPositionals installs an arity validator derived from the
// declared nargs and a RunE hook that distributes the validated
// tokens to their bound values.
func (ns *Namespace) bindPositionals(cmd *cobra.Command, positionals []namedArg) error {
	prev := cmd.RunE
	if len(positionals) == 0 {
		if prev == nil && cmd.Run == nil {
			cmd.RunE = func(*cobra.Command, []string) error { return nil }
		}
		return nil
	}
	minTotal, maxTotal := 0, 0
	for _, p := range positionals {
		switch n := p.arg.nargs; {
		case n == NArgsOptional:
			if maxTotal >= 0 {
				maxTotal++
			}
		case n == NArgsAny:
			maxTotal = -1
		case n == NArgsAtLeastOne:
			minTotal++
			maxTotal = -1
		case n == 0:
			minTotal++
			if maxTotal >= 0 {
				maxTotal++
			}
		case n > 0:
			minTotal += int(n)
			if maxTotal >= 0 {
				maxTotal += int(n)
			}
		default:
			return fmt.Errorf("%w: positional %q has invalid nargs %d", ErrBadSpec, p.name, p.arg.nargs)
		}
		if p.arg.hasDefault {
			if err := p.arg.value.Set(p.arg.defText); err != nil {
				return fmt.Errorf("default for %s: %w", p.name, err)
			}
			if tracker, ok := p.arg.value.(changeTracker); ok {
				tracker.clearChanged()
			}
		}
	}
	switch {
	case maxTotal < 0 && minTotal == 0:
		cmd.Args = cobra.ArbitraryArgs
	case maxTotal < 0:
		cmd.Args = cobra.MinimumNArgs(minTotal)
	case minTotal == maxTotal:
		cmd.Args = cobra.ExactArgs(minTotal)
	default:
		cmd.Args = cobra.RangeArgs(minTotal, maxTotal)
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if err := distribute(positionals, args); err != nil {
			return err
		}
		if prev != nil {
			return prev(c, args)
		}
		return nil
	}
	return nil
}

// distribute hands tokens to positionals left to right, giving each
// spec as many as it may take while leaving the minimum required by
// the specs after it. Arity errors cannot occur here: the command's
// Args validator has already run.
func distribute(positionals []namedArg, args []string) error {
	remaining := args
	for i, p := range positionals {
		reserve := minTokens(positionals[i+1:])
		avail := len(remaining) - reserve
		if avail < 0 {
			avail = 0
		}
		var take int
		switch n := p.arg.nargs; n {
		case NArgsOptional:
			if avail > 0 {
				take = 1
			}
		case NArgsAny, NArgsAtLeastOne:
			take = avail
		case 0:
			take = 1
		default:
			take = int(n)
		}
		if take > len(remaining) {
			take = len(remaining)
		}
		value := p.arg.effectiveValue()
		for _, tok := range remaining[:take] {
			if err := value.Set(tok); err != nil {
				return fmt.Errorf("argument %s: %w", p.name, err)
			}
		}
		remaining = remaining[take:]
	}
	return nil
}

func minTokens(positionals []namedArg) int {
	total := 0
	for _, p := range positionals {
		switch n := p.arg.nargs; {
		case n == NArgsAtLeastOne || n == 0:
			total++
		case n > 0:
			total += int(n)
		}
	}
	return total
}
