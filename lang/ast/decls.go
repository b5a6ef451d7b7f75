package ast

import "github.com/mna/hpl/lang/token"

// ClassDecl is a parsed `classes:` entry (spec.md §4.1): a name, its
// methods, and an optional parent class name for single inheritance,
// grounded on original_source/hpl_runtime/models.py's HPLClass.
type ClassDecl struct {
	Pos     token.Position
	Name    string
	Parent  string // empty if the class has no parent
	Methods map[string]*FunctionBody
}

func (c *ClassDecl) Span() token.Position { return c.Pos }

// ObjectDecl is a parsed `objects:` entry: `name: ClassName(arg, arg, …)`
// (spec.md §4.1, §4.5) — a named instance of a class with the positional
// constructor arguments to apply, grounded on HPLObject.
type ObjectDecl struct {
	Pos       token.Position
	Name      string
	ClassName string
	Args      []Expr
}

func (o *ObjectDecl) Span() token.Position { return o.Pos }

// FunctionDecl is a top-level (document-scope) named function.
type FunctionDecl struct {
	Pos  token.Position
	Name string
	Body *FunctionBody
}

func (f *FunctionDecl) Span() token.Position { return f.Pos }

// CallDirective is the document's `call:` directive: an invocation of a top-level function or an object method to run at
// program start (spec.md §4.1).
type CallDirective struct {
	Pos      token.Position
	Target   string // function name, or "object.method"
	Receiver string // object name, empty for a plain function call
	Method   string // method name, empty for a plain function call
	Args     []Expr
}

func (c *CallDirective) Span() token.Position { return c.Pos }

// ImportDecl is one entry of the document's `imports:` list.
type ImportDecl struct {
	Pos   token.Position
	Name  string
	Alias string
}

func (i *ImportDecl) Span() token.Position { return i.Pos }

// IncludeDecl is one entry of the document's `includes:` list: another
// .hpl source file merged into this one before evaluation (spec.md §4.1).
type IncludeDecl struct {
	Pos  token.Position
	Path string
}

func (i *IncludeDecl) Span() token.Position { return i.Pos }

// Document is the fully parsed program: the merged result of a source file
// and all the files it transitively includes (spec.md §4.1's declaration
// tree: "{classes, objects, mainFunc, callTarget, callArgs, imports,
// includes}"). MainFunc holds the parsed `main:` body (nil if the document
// has none) and Call holds the parsed `call:` directive (nil if absent);
// spec.md §6 requires at least one of the two for a document to be
// executable.
type Document struct {
	Pos       token.Position
	Includes  []*IncludeDecl
	Imports   []*ImportDecl
	Classes   map[string]*ClassDecl
	Objects   map[string]*ObjectDecl
	Functions map[string]*FunctionDecl
	MainFunc  *FunctionBody
	Call      *CallDirective
}

func (d *Document) Span() token.Position { return d.Pos }
