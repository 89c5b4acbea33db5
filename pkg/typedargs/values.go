package typedargs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

// The value types below bind a caller-owned variable to a pflag flag.
// They follow the same Set/String/Type contract as pflag's builtin
// values so that everything downstream (defaults, NoOptDefVal, usage
// rendering) behaves exactly like a hand-registered flag.

type stringValue struct {
	p *string
}

func newStringValue(p *string) *stringValue { return &stringValue{p: p} }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }
func (v *stringValue) Type() string       { return "string" }

type boolValue struct {
	p *bool
}

func newBoolValue(p *bool) *boolValue { return &boolValue{p: p} }

func (v *boolValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*v.p = b
	return nil
}

func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }
func (v *boolValue) Type() string   { return "bool" }

type intValue struct {
	p *int
}

func newIntValue(p *int) *intValue { return &intValue{p: p} }

func (v *intValue) Set(s string) error {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	*v.p = int(n)
	return nil
}

func (v *intValue) String() string { return strconv.Itoa(*v.p) }
func (v *intValue) Type() string   { return "int" }

type int64Value struct {
	p *int64
}

func newInt64Value(p *int64) *int64Value { return &int64Value{p: p} }

func (v *int64Value) Set(s string) error {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}

func (v *int64Value) String() string { return strconv.FormatInt(*v.p, 10) }
func (v *int64Value) Type() string   { return "int64" }

type float64Value struct {
	p *float64
}

func newFloat64Value(p *float64) *float64Value { return &float64Value{p: p} }

func (v *float64Value) Set(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v.p = f
	return nil
}

func (v *float64Value) String() string { return strconv.FormatFloat(*v.p, 'g', -1, 64) }
func (v *float64Value) Type() string   { return "float64" }

// countValue increments on every bare occurrence of its flag. The
// sentinel "+1" is installed as the flag's NoOptDefVal, mirroring
// pflag's own count flags; an explicit value assigns directly.
type countValue struct {
	p *int
}

func newCountValue(p *int) *countValue { return &countValue{p: p} }

func (v *countValue) Set(s string) error {
	if s == "+1" {
		*v.p++
		return nil
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	*v.p = int(n)
	return nil
}

func (v *countValue) String() string { return strconv.Itoa(*v.p) }
func (v *countValue) Type() string   { return "count" }

// changeTracker lets the builder apply a textual default through Set
// and then rearm the replace-on-first-Set behavior of slice values.
type changeTracker interface {
	clearChanged()
}

// stringSliceValue appends one raw token per occurrence, like pflag's
// string arrays. The first command-line occurrence replaces any
// declared default instead of appending to it.
type stringSliceValue struct {
	p       *[]string
	changed bool
}

func newStringSliceValue(p *[]string) *stringSliceValue { return &stringSliceValue{p: p} }

func (v *stringSliceValue) Set(s string) error {
	if !v.changed {
		*v.p = []string{s}
		v.changed = true
	} else {
		*v.p = append(*v.p, s)
	}
	return nil
}

func (v *stringSliceValue) String() string { return "[" + strings.Join(*v.p, ",") + "]" }
func (v *stringSliceValue) Type() string   { return "stringArray" }
func (v *stringSliceValue) clearChanged()  { v.changed = false }

type intSliceValue struct {
	p       *[]int
	changed bool
}

func newIntSliceValue(p *[]int) *intSliceValue { return &intSliceValue{p: p} }

func (v *intSliceValue) Set(s string) error {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	if !v.changed {
		*v.p = []int{int(n)}
		v.changed = true
	} else {
		*v.p = append(*v.p, int(n))
	}
	return nil
}

func (v *intSliceValue) String() string {
	return "[" + strings.Join(lo.Map(*v.p, func(n int, _ int) string { return strconv.Itoa(n) }), ",") + "]"
}

func (v *intSliceValue) Type() string  { return "intArray" }
func (v *intSliceValue) clearChanged() { v.changed = false }

// choiceValue restricts an argument to a fixed set of tokens. The
// check runs inside the underlying parser's Set path, so a rejected
// token fails the parse the same way a conversion error would.
type choiceValue struct {
	pflag.Value
	allowed []string
}

func (v *choiceValue) Set(s string) error {
	if !lo.Contains(v.allowed, s) {
		return fmt.Errorf("invalid choice %q (choose from %s)", s, strings.Join(v.allowed, ", "))
	}
	return v.Value.Set(s)
}
