package typedargs

import (
	"os"

	"github.com/spf13/cobra"
)

// Parser ties a declarative argument definition to a result struct
// type. The definition function receives a fresh namespace and a
// fresh *T on every Build or Parse call, binds the struct's fields to
// typed argument specs, and the layer does the rest, so a Parser is
// reusable and carries no state between invocations.
type Parser[T any] struct {
	prog   string
	opts   []Option
	define func(*Namespace, *T)
}

// New declares a parser for the named program. The define function is
// invoked with the namespace to populate and the result struct whose
// fields the argument specs bind to.
func New[T any](prog string, define func(*Namespace, *T), opts ...Option) *Parser[T] {
	return &Parser[T]{prog: prog, opts: opts, define: define}
}

// Build constructs the cobra command and the result struct it is
// bound to. Executing the command populates the struct.
func (p *Parser[T]) Build() (*cobra.Command, *T, error) {
	result := new(T)
	ns := NewNamespace(p.prog, p.opts...)
	if p.define != nil {
		p.define(ns, result)
	}
	cmd, err := ns.Build()
	if err != nil {
		return nil, nil, err
	}
	return cmd, result, nil
}

// Parse builds the parser, executes it against the given tokens, and
// returns the populated result. Usage and error reporting are
// cobra's own; the error comes back exactly as cobra produced it.
func (p *Parser[T]) Parse(argv []string) (*T, error) {
	cmd, result, err := p.Build()
	if err != nil {
		return nil, err
	}
	cmd.SetArgs(argv)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseOSArgs parses the process arguments.
func (p *Parser[T]) ParseOSArgs() (*T, error) {
	return p.Parse(os.Args[1:])
}
