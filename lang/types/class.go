package types

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/mna/hpl/lang/ast"
)

// ClassRef is the runtime representation of a `classes:` declaration: its
// name, its own methods, and a pointer to its parent ClassRef for single
// inheritance (spec.md §3), grounded on
// _examples/original_source/hpl_runtime/models.py's HPLClass.
type ClassRef struct {
	Name    string
	Parent  *ClassRef
	Methods map[string]*FunctionRef
}

func (*ClassRef) Type() string     { return "class" }
func (c *ClassRef) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (*ClassRef) valueNode()       {}

// LookupMethod finds a method by name on c, walking up the Parent chain so
// inherited methods resolve exactly like the Python original's attribute
// lookup on a class hierarchy.
func (c *ClassRef) LookupMethod(name string) (*FunctionRef, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if fn, ok := cur.Methods[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// ObjectInstance is a live instance of a ClassRef, with its own attribute
// table (a swiss map, per SPEC_FULL.md's scope-chain/hash-table design
// note) seeded from the document's `objects:` entry and mutated as methods
// run.
type ObjectInstance struct {
	Class      *ClassRef
	Name       string
	Attributes *swiss.Map[string, Value]
}

// NewObjectInstance returns an instance of class with an empty attribute
// table ready to be populated.
func NewObjectInstance(name string, class *ClassRef) *ObjectInstance {
	return &ObjectInstance{Class: class, Name: name, Attributes: swiss.NewMap[string, Value](8)}
}

// Type returns the object's class name, per spec.md §4.4's `type()` builtin
// table (canonical tag for an instance is its class name, not "object").
func (o *ObjectInstance) Type() string { return o.Class.Name }
func (o *ObjectInstance) String() string {
	return fmt.Sprintf("<%s instance>", o.Class.Name)
}
func (*ObjectInstance) valueNode() {}

func (o *ObjectInstance) GetAttr(name string) (Value, bool) {
	return o.Attributes.Get(name)
}

func (o *ObjectInstance) SetAttr(name string, v Value) {
	o.Attributes.Put(name, v)
}

// FunctionRef is a top-level or class-method function value: its formal
// parameter names and its parsed body. Builtin is set instead of Body for
// host-implemented module functions (standard-library and host-package
// functions, and a script module's class constructors).
type FunctionRef struct {
	Name    string
	Params  []string
	Body    *ast.Block
	Builtin BuiltinFunc // non-nil for host-implemented functions

	// Closure is the global table fn was declared against (spec.md §3:
	// "functions are closed over the top-level scope in which they were
	// declared"). Set once by the evaluator that links fn's declaring
	// Program; nil until then, in which case callers fall back to their own
	// running evaluator's global table (correct for a document's own
	// top-level functions and methods, which are always called from the
	// same evaluator that declared them).
	Closure map[string]Value
}

// BuiltinFunc is the signature of a host-implemented HPL function; args are
// already-evaluated Values.
type BuiltinFunc func(args []Value) (Value, error)

func (*FunctionRef) Type() string     { return "function" }
func (f *FunctionRef) String() string { return fmt.Sprintf("<function %s>", f.Name) }
func (*FunctionRef) valueNode()       {}

// ModuleRef is a resolved, imported module: its exported constants and
// functions, keyed by name (spec.md §4.6).
type ModuleRef struct {
	Name      string
	Constants map[string]Value
	Functions map[string]*FunctionRef
}

func (*ModuleRef) Type() string     { return "module" }
func (m *ModuleRef) String() string { return fmt.Sprintf("<module %s>", m.Name) }
func (*ModuleRef) valueNode()       {}

func (m *ModuleRef) Get(name string) (Value, bool) {
	if fn, ok := m.Functions[name]; ok {
		return fn, true
	}
	v, ok := m.Constants[name]
	return v, ok
}
