// Package types defines the closed, tagged Value set HPL programs operate
// on (spec.md §3): Int, Float, Bool, String, Array, ClassRef, ObjectInstance,
// FunctionRef, ModuleRef and Null. Unlike the teacher's (nenuphar's) open,
// interface-heavy Value family — designed for an extensible Starlark-like
// language with user-defined iterables/mappings/callables — HPL's data
// model is fixed by the spec, so Value here is a small sum type instead of
// an extensibility point, grounded on
// _examples/original_source/hpl_runtime/models.py and evaluator.py's
// runtime representations.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is any runtime value a HPL program can hold.
type Value interface {
	// Type returns the spec.md §4.4 `type()` builtin's name for this value.
	Type() string
	// String returns the canonical human-readable rendering used by echo,
	// str() and string concatenation (spec.md Open Question resolution in
	// SPEC_FULL.md: integer-valued floats keep a trailing ".0").
	String() string
	valueNode()
}

// Null is HPL's single absent-value singleton.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }
func (Null) valueNode()     {}

// NullValue is the shared Null instance; Value methods on Null have no
// state, so a single instance suffices everywhere a null is needed.
var NullValue = Null{}

// Int is a 64-bit signed integer value.
type Int int64

func (Int) Type() string     { return "int" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) valueNode()       {}

// Float is a 64-bit floating point value.
type Float float64

func (Float) Type() string { return "float" }

func (f Float) String() string {
	x := float64(f)
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
func (Float) valueNode() {}

// Bool is HPL's boolean value; conditions and logical operators require
// exactly this type (no implicit truthy coercion, per SPEC_FULL.md's Open
// Question resolution).
type Bool bool

func (Bool) Type() string { return "boolean" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) valueNode() {}

// String is a HPL string value.
type String string

func (String) Type() string     { return "string" }
func (s String) String() string { return string(s) }
func (String) valueNode()       {}

// Array is a mutable, ordered, heterogeneous list of values.
type Array struct {
	Elems []Value
}

func NewArray(elems []Value) *Array { return &Array{Elems: elems} }

func (*Array) Type() string { return "array" }
func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		if s, ok := e.(String); ok {
			fmt.Fprintf(&b, "%q", string(s))
		} else {
			b.WriteString(e.String())
		}
	}
	b.WriteByte(']')
	return b.String()
}
func (*Array) valueNode() {}
