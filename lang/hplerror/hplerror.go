// Package hplerror defines the structured error taxonomy used throughout
// the HPL toolchain (spec.md §4.9) and the source-context formatter the
// host layer uses to render a one-line summary, a 3-line source window
// with a caret, and the call stack (deepest frame first).
package hplerror

import (
	"fmt"
	"strings"

	"github.com/mna/hpl/lang/token"
)

// Kind identifies one of the closed set of error kinds spec.md §4.9 names.
type Kind string

const (
	SyntaxError      Kind = "SyntaxError"
	ImportError      Kind = "ImportError"
	NameError        Kind = "NameError"
	TypeError        Kind = "TypeError"
	IndexError       Kind = "IndexError"
	ArithmeticError  Kind = "ArithmeticError"
	MethodNotFound   Kind = "MethodNotFound"
	RuntimeError     Kind = "RuntimeError"
	TimeoutError     Kind = "TimeoutError"
	MemoryLimitError Kind = "MemoryLimitExceeded"
	SandboxError     Kind = "SandboxError"
)

// Error is the structured error type produced by every stage of the
// pipeline (loader, parser, evaluator, sandbox). It implements the error
// interface via Error().
type Error struct {
	Kind      Kind
	Message   string
	Pos       token.Position
	CallStack []string // deepest frame first, filled in as the error unwinds
	ErrorKey  string    // stable short identifier for localisation lookups
}

func New(kind Kind, errorKey, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), ErrorKey: errorKey}
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithPos returns a copy of e with Pos set, if it wasn't already.
func (e *Error) WithPos(pos token.Position) *Error {
	if e.Pos.IsValid() {
		return e
	}
	cp := *e
	cp.Pos = pos
	return &cp
}

// PushFrame appends label to the call stack, for use as a method/function
// activation unwinds through an error. Unwinding runs from the deepest
// activation outward, so the stack stays deepest frame first.
func (e *Error) PushFrame(label string) *Error {
	cp := *e
	cp.CallStack = append(append([]string(nil), e.CallStack...), label)
	return &cp
}

// Format renders the user-visible rendering described in spec.md §4.9: a
// one-line summary, a 3-line source window around Pos with a caret under
// the column, and the call stack, deepest frame first.
func (e *Error) Format(source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", e.Kind, e.Message)

	if e.Pos.IsValid() && source != "" {
		lines := strings.Split(source, "\n")
		lo := e.Pos.Line - 2
		if lo < 0 {
			lo = 0
		}
		hi := e.Pos.Line + 1
		if hi > len(lines) {
			hi = len(lines)
		}
		for i := lo; i < hi; i++ {
			fmt.Fprintf(&b, "%4d | %s\n", i+1, lines[i])
			if i+1 == e.Pos.Line {
				col := e.Pos.Column
				if col < 1 {
					col = 1
				}
				fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
			}
		}
	}

	for _, frame := range e.CallStack {
		fmt.Fprintf(&b, "  at %s\n", frame)
	}
	return b.String()
}

// List aggregates multiple errors, e.g. produced by Validate, which may
// surface more than one diagnostic per compile (spec.md §9's "Parser error
// recovery" note).
type List []*Error

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (l *List) Add(e *Error) { *l = append(*l, e) }

func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
