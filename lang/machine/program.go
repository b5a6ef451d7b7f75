package machine

import (
	"fmt"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/types"
)

// Program is the linked, ready-to-run form of a lang/loader Document: its
// declarations turned into the runtime records spec.md §3 defines
// (ClassRef, FunctionRef, ObjectInstance), built once at load time and
// immutable thereafter except for object attributes and array contents
// (spec.md §3's Lifecycle paragraph).
type Program struct {
	Classes   map[string]*types.ClassRef
	Objects   map[string]*types.ObjectInstance
	Functions map[string]*types.FunctionRef
	MainFunc  *types.FunctionRef // the document's `main:` body, nil if absent
	Call      *ast.CallDirective // the document's `call:` directive, nil if absent
	Imports   []*ast.ImportDecl

	objectArgs map[string][]ast.Expr // unevaluated constructor args, keyed by object name
}

// BuildProgram links a parsed Document into a Program: every class's
// methods become FunctionRef values (with Parent pointers resolved by
// name, deferred so forward references to a later-declared parent work),
// every top-level function becomes a FunctionRef, and every declared
// object becomes an ObjectInstance whose constructor has not yet run
// (spec.md §4.5: "On first evaluation that dereferences the instance,
// __init__ ... is invoked").
func BuildProgram(doc *ast.Document) (*Program, error) {
	p := &Program{
		Classes:    make(map[string]*types.ClassRef, len(doc.Classes)),
		Objects:    make(map[string]*types.ObjectInstance, len(doc.Objects)),
		Functions:  make(map[string]*types.FunctionRef, len(doc.Functions)),
		objectArgs: make(map[string][]ast.Expr, len(doc.Objects)),
		Call:       doc.Call,
		Imports:    doc.Imports,
	}

	for name, cd := range doc.Classes {
		cls := &types.ClassRef{Name: name, Methods: make(map[string]*types.FunctionRef, len(cd.Methods))}
		for mname, fb := range cd.Methods {
			cls.Methods[mname] = &types.FunctionRef{
				Name:   fmt.Sprintf("%s.%s", name, mname),
				Params: paramNames(fb.Params),
				Body:   fb.Body,
			}
		}
		p.Classes[name] = cls
	}
	for name, cd := range doc.Classes {
		if cd.Parent == "" {
			continue
		}
		parent, ok := p.Classes[cd.Parent]
		if !ok {
			return nil, fmt.Errorf("class %q: parent class %q not found", name, cd.Parent)
		}
		p.Classes[name].Parent = parent
	}

	for name, fd := range doc.Functions {
		p.Functions[name] = &types.FunctionRef{
			Name:   name,
			Params: paramNames(fd.Body.Params),
			Body:   fd.Body.Body,
		}
	}

	for name, od := range doc.Objects {
		cls, ok := p.Classes[od.ClassName]
		if !ok {
			return nil, fmt.Errorf("object %q: class %q not found", name, od.ClassName)
		}
		p.Objects[name] = types.NewObjectInstance(name, cls)
		p.objectArgs[name] = od.Args
	}

	if doc.MainFunc != nil {
		p.MainFunc = &types.FunctionRef{
			Name:   "main",
			Params: paramNames(doc.MainFunc.Params),
			Body:   doc.MainFunc.Body,
		}
	}

	return p, nil
}

func paramNames(params []ast.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}
