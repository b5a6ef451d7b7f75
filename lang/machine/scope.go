// Package machine implements the tree-walking evaluator (spec.md §4.4,
// §4.5) over the AST produced by lang/parser: the value model's scope
// chain, method dispatch, built-ins, and the plain and debug-instrumented
// execution loops. Grounded on
// _examples/original_source/hpl_runtime/evaluator.py for the evaluation
// semantics, and on github.com/mna/nenuphar/lang/machine/thread.go for the
// Thread shape (context, step/stack-depth limits, Stdout/Stderr/Stdin).
package machine

import "github.com/mna/hpl/lang/types"

// Scope is the two-level (local, global) binding pair spec.md §3
// describes: "a pair (localFrame, globalTable)". Implemented as a pair of
// plain Go maps per SPEC_FULL.md's "Scope chain: implement as a pair of
// hash tables, not a linked list of frames" design note, rather than the
// teacher's lexically-resolved cell/frame machinery (which belongs to a
// statically scoped, closure-compiling language that spec.md's Non-goals
// rule out here). Unlike types.ObjectInstance.Attributes, a local frame is
// short-lived (one function activation) and usually holds a handful of
// names, so the swiss-table's larger constant factor buys nothing here;
// the global table is long-lived but still rarely large enough for a
// probing hash table to pay for itself over Go's built-in map.
type Scope struct {
	Local  map[string]types.Value
	Global map[string]types.Value
}

// NewScope returns a Scope with a fresh local frame sharing global.
func NewScope(global map[string]types.Value) *Scope {
	return &Scope{Local: make(map[string]types.Value), Global: global}
}

// Lookup resolves name consulting the local frame first, then the global
// table, per spec.md §3's "Name lookup consults local first, then global."
func (s *Scope) Lookup(name string) (types.Value, bool) {
	if v, ok := s.Local[name]; ok {
		return v, true
	}
	v, ok := s.Global[name]
	return v, ok
}

// Assign binds name to v. If name already exists in either scope, that
// scope is mutated in place; otherwise a new local binding is created
// (spec.md §3: "Assignment to a name already present in either scope
// mutates that scope; otherwise it creates a local.").
func (s *Scope) Assign(name string, v types.Value) {
	if _, ok := s.Local[name]; ok {
		s.Local[name] = v
		return
	}
	if _, ok := s.Global[name]; ok {
		s.Global[name] = v
		return
	}
	s.Local[name] = v
}
