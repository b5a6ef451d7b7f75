package loader

import "github.com/mna/hpl/lang/ast"

// Outline is a structural summary of a loaded document, for editor/IDE
// tooling that wants a quick symbol list without re-walking the AST itself.
// Supplemented feature per SPEC_FULL.md, grounded on
// _examples/original_source/ide/services/hpl_engine.py's get_code_outline.
type Outline struct {
	Classes   []ClassOutline
	Functions []FunctionOutline
	Objects   []ObjectOutline
	Imports   []ImportOutline
}

type ClassOutline struct {
	Name    string
	Parent  string
	Methods []MethodOutline
}

type MethodOutline struct {
	Name   string
	Params []string
}

type FunctionOutline struct {
	Name   string
	Params []string
	IsMain bool
}

type ObjectOutline struct {
	Name  string
	Class string
}

type ImportOutline struct {
	Module string
	Alias  string
}

// BuildOutline extracts an Outline from a loaded document. main, when
// present, is always reported first in Functions (hpl_engine.py's
// get_code_outline inserts it at index 0 the same way).
func BuildOutline(doc *ast.Document) Outline {
	var o Outline

	for name, c := range doc.Classes {
		methods := make([]MethodOutline, 0, len(c.Methods))
		for mname, fb := range c.Methods {
			methods = append(methods, MethodOutline{Name: mname, Params: paramNames(fb.Params)})
		}
		o.Classes = append(o.Classes, ClassOutline{Name: name, Parent: c.Parent, Methods: methods})
	}

	if doc.MainFunc != nil {
		o.Functions = append(o.Functions, FunctionOutline{Name: "main", Params: paramNames(doc.MainFunc.Params), IsMain: true})
	}
	for name, fd := range doc.Functions {
		o.Functions = append(o.Functions, FunctionOutline{Name: name, Params: paramNames(fd.Body.Params)})
	}

	for name, obj := range doc.Objects {
		o.Objects = append(o.Objects, ObjectOutline{Name: name, Class: obj.ClassName})
	}

	for _, imp := range doc.Imports {
		alias := imp.Alias
		if alias == "" {
			alias = imp.Name
		}
		o.Imports = append(o.Imports, ImportOutline{Module: imp.Name, Alias: alias})
	}

	return o
}

func paramNames(params []ast.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
