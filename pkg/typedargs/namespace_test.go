package typedargs

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
)

func TestAddValidDeclarations(t *testing.T) {
	var (
		input    string
		output   string
		hex      bool
		val      float64
		resize   float64
		filename string
	)
	ns := NewNamespace("app")
	ns.Add("input", StringVar(&input, "-i", "--input"))
	ns.Add("output", StringVar(&output, "-o", "--output"))
	ns.Add("hex", BoolVar(&hex, "-H", "--hex"))
	ns.Add("val", Float64Var(&val, "-V").Default("0.0"))
	ns.Add("resize_factor", Float64Var(&resize, "--resize-factor"))
	ns.Add("filename", StringVar(&filename, "filename"))
	if err := ns.Err(); err != nil {
		t.Fatalf("unexpected configuration error: %v", err)
	}
	if _, err := ns.Build(); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
}

func TestAddDestMismatch(t *testing.T) {
	var s string
	cases := []struct {
		name    string
		declare func(ns *Namespace)
		want    error
	}{
		{
			name:    "explicit dest differs",
			declare: func(ns *Namespace) { ns.Add("testname", StringVar(&s, "--othername").Dest("othername")) },
			want:    ErrDestMismatch,
		},
		{
			name:    "positional name differs",
			declare: func(ns *Namespace) { ns.Add("testname", StringVar(&s, "othername")) },
			want:    ErrDestMismatch,
		},
		{
			name:    "positional with explicit dest",
			declare: func(ns *Namespace) { ns.Add("testname", StringVar(&s, "testname").Dest("testname")) },
			want:    ErrBadSpec,
		},
		{
			name:    "derived dest differs",
			declare: func(ns *Namespace) { ns.Add("foo", StringVar(&s, "-b", "--bar")) },
			want:    ErrDestMismatch,
		},
		{
			name:    "no flags at all",
			declare: func(ns *Namespace) { ns.Add("foo", StringVar(&s)) },
			want:    ErrBadSpec,
		},
		{
			name:    "positional mixed with options",
			declare: func(ns *Namespace) { ns.Add("foo", StringVar(&s, "--foo", "bare")) },
			want:    ErrBadSpec,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ns := NewNamespace("app")
			tc.declare(ns)
			err := ns.Err()
			if err == nil {
				t.Fatalf("expected configuration error, got nil")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if _, err := ns.Build(); err == nil {
				t.Errorf("expected Build to fail before constructing a parser")
			}
		})
	}
}

func TestAddDestValidCases(t *testing.T) {
	var s string
	cases := []struct {
		name    string
		declare func(ns *Namespace)
	}{
		{
			name:    "explicit dest matches",
			declare: func(ns *Namespace) { ns.Add("testname", StringVar(&s, "--testname").Dest("testname")) },
		},
		{
			name:    "short flags only skip validation",
			declare: func(ns *Namespace) { ns.Add("val", Float64Var(new(float64), "-V")) },
		},
		{
			name:    "dashes map to underscores",
			declare: func(ns *Namespace) { ns.Add("resize_factor", StringVar(&s, "--resize-factor")) },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ns := NewNamespace("app")
			tc.declare(ns)
			if err := ns.Err(); err != nil {
				t.Fatalf("unexpected configuration error: %v", err)
			}
		})
	}
}

func TestDeriveDest(t *testing.T) {
	dest, ok := deriveDest([]string{"-i", "--in", "--input-file"})
	if !ok {
		t.Fatalf("expected a derivable destination")
	}
	if dest != "input_file" {
		t.Errorf("expected input_file, got %q", dest)
	}
	if _, ok := deriveDest([]string{"-V"}); ok {
		t.Errorf("short flags should not derive a destination")
	}
}

func TestGroupAddValidates(t *testing.T) {
	ns := NewNamespace("app")
	grp := ns.Group("Output", "output options")
	grp.Add("testname", StringVar(new(string), "--othername"))
	if err := ns.Err(); !errors.Is(err, ErrDestMismatch) {
		t.Fatalf("expected ErrDestMismatch from group member, got %v", err)
	}
}

func TestDeclarationOrderPreserved(t *testing.T) {
	ns := NewNamespace("app")
	ns.Add("zeta", StringVar(new(string), "--zeta"))
	ns.Add("alpha", StringVar(new(string), "--alpha"))
	ns.Add("mid", StringVar(new(string), "--mid"))
	cmd, err := ns.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	var order []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		order = append(order, f.Name)
	})
	want := []string{"zeta", "alpha", "mid"}
	if len(order) != len(want) {
		t.Fatalf("expected %d flags, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("flag %d: expected %q, got %q", i, want[i], order[i])
		}
	}
}
