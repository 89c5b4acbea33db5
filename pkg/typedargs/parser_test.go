package typedargs

import (
	"errors"
	"testing"
)

type convertArgs struct {
	Input  string
	Output string
	Hex    bool
	Val    float64
}

func newConvertParser() *Parser[convertArgs] {
	return New("convert", func(ns *Namespace, a *convertArgs) {
		ns.Add("input", StringVar(&a.Input, "-i", "--input"))
		ns.Add("output", StringVar(&a.Output, "-o", "--output"))
		ns.Add("hex", BoolVar(&a.Hex, "-H", "--hex"))
		ns.Add("val", Float64Var(&a.Val, "-V").Default("0.0"))
	})
}

func TestParseEndToEnd(t *testing.T) {
	args, err := newConvertParser().Parse([]string{"-i", "a", "-o", "b", "-H"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if args.Input != "a" {
		t.Errorf("expected input a, got %q", args.Input)
	}
	if args.Output != "b" {
		t.Errorf("expected output b, got %q", args.Output)
	}
	if !args.Hex {
		t.Errorf("expected hex to be set")
	}
	if args.Val != 0.0 {
		t.Errorf("expected val 0.0, got %v", args.Val)
	}
}

func TestParseFreshResultPerInvocation(t *testing.T) {
	parser := newConvertParser()
	first, err := parser.Parse([]string{"-i", "one", "-o", "x"})
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := parser.Parse([]string{"-i", "two", "-o", "y"})
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh result per invocation")
	}
	if first.Input != "one" || second.Input != "two" {
		t.Errorf("results leaked between invocations: %q, %q", first.Input, second.Input)
	}
}

type subcommandArgs struct {
	Command string
	Bing    string
	Bang    string
	Blo     string
	Blu     string
}

func newSubcommandParser() *Parser[subcommandArgs] {
	return New("app", func(ns *Namespace, a *subcommandArgs) {
		subs := ns.Subcommands("Subcommands").Dest(&a.Command)
		foo := subs.Command("foo", "foo command")
		foo.Add("bing", StringVar(&a.Bing, "-B", "--bing"))
		foo.Add("bang", StringVar(&a.Bang, "-A", "--bang"))
		bar := subs.Command("bar", "bar command")
		bar.Add("blo", StringVar(&a.Blo, "-O", "--blo"))
		bar.Add("blu", StringVar(&a.Blu, "-U", "--blu"))
	})
}

func TestSubcommands(t *testing.T) {
	args, err := newSubcommandParser().Parse([]string{"foo", "-B", "x"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if args.Command != "foo" {
		t.Errorf("expected command foo, got %q", args.Command)
	}
	if args.Bing != "x" {
		t.Errorf("expected bing=x, got %q", args.Bing)
	}
	if args.Blo != "" {
		t.Errorf("the other command's argument should stay untouched, got %q", args.Blo)
	}

	args, err = newSubcommandParser().Parse([]string{"bar", "-O", "y"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if args.Command != "bar" {
		t.Errorf("expected command bar, got %q", args.Command)
	}
	if args.Blo != "y" {
		t.Errorf("expected blo=y, got %q", args.Blo)
	}
	if args.Bing != "" {
		t.Errorf("expected bing untouched, got %q", args.Bing)
	}
}

func TestSubcommandHandler(t *testing.T) {
	ran := false
	parser := New("app", func(ns *Namespace, a *subcommandArgs) {
		subs := ns.Subcommands("")
		subs.Command("run", "run it").Run(func() error {
			ran = true
			return nil
		})
	})
	if _, err := parser.Parse([]string{"run"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !ran {
		t.Errorf("expected the command handler to run")
	}
}

func TestRequiredSubcommands(t *testing.T) {
	parser := New("app", func(ns *Namespace, a *subcommandArgs) {
		subs := ns.Subcommands("Subcommands").Required()
		subs.Command("foo", "foo command")
	})
	cmd, _, err := parser.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if err := execute(t, cmd, []string{}); err == nil {
		t.Errorf("bare invocation should fail when a command is required")
	}
}

func TestParseConfigurationError(t *testing.T) {
	parser := New("app", func(ns *Namespace, a *convertArgs) {
		ns.Add("testname", StringVar(&a.Input, "--othername").Dest("othername"))
	})
	if _, err := parser.Parse([]string{}); !errors.Is(err, ErrDestMismatch) {
		t.Fatalf("expected ErrDestMismatch before parsing, got %v", err)
	}
}

func TestAllowUnknownFlags(t *testing.T) {
	parser := New("app", func(ns *Namespace, a *convertArgs) {
		ns.Add("input", StringVar(&a.Input, "-i", "--input"))
	}, AllowUnknownFlags())
	args, err := parser.Parse([]string{"-i", "abc", "--bla", "test"})
	if err != nil {
		t.Fatalf("unknown flags should be tolerated: %v", err)
	}
	if args.Input != "abc" {
		t.Errorf("expected abc, got %q", args.Input)
	}
}

func TestHelpIsDelegated(t *testing.T) {
	cmd, _, err := newConvertParser().Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if err := execute(t, cmd, []string{"--help"}); err != nil {
		t.Errorf("help should be handled by the underlying parser: %v", err)
	}
}

func TestEmptyDefinitionParses(t *testing.T) {
	parser := New[convertArgs]("app", nil)
	if _, err := parser.Parse([]string{}); err != nil {
		t.Fatalf("empty declaration should still parse: %v", err)
	}
}
