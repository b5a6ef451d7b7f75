package module

import (
	"context"
	"path/filepath"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/machine"
	"github.com/mna/hpl/lang/types"
)

// loadScriptModule implements spec.md §4.6 step 3: parse name.hpl (or
// name/index.hpl) as an ordinary document, link it into a Program, run it
// far enough to construct its own top-level objects, and expose its
// classes and objects the way
// _examples/original_source/hpl_runtime/module_loader.py's
// _parse_hpl_module does: each class becomes a constructor function
// (there left as a stub that never actually calls __init__, literal
// comment "这里简化处理" / "simplified handling here" — this port runs the
// constructor for real via machine.Evaluator.NewInstance), and each
// top-level object becomes an eagerly constructed constant (via
// machine.Evaluator.EnsureConstructed, standing in for the Python
// original's bare `register_constant(obj_name, obj, ...)`, since Go has no
// "first dereference by name" moment for a value that only lives in a
// module's constant table).
func (l *Loader) loadScriptModule(name string) (*types.ModuleRef, error) {
	path, err := l.findScriptPath(name)
	if err != nil {
		return nil, err
	}

	// A module needs no main:/call: of its own; the loader still returns the
	// parsed document alongside its NO_ENTRY_POINT error.
	doc, _, err := l.docLoader.LoadFile(path)
	if herr, ok := err.(*hplerror.Error); err != nil && (!ok || herr.ErrorKey != "NO_ENTRY_POINT") {
		return nil, err
	}
	prog, err := machine.BuildProgram(doc)
	if err != nil {
		return nil, hplerror.New(hplerror.ImportError, "MODULE_LINK_ERROR", "%s", err)
	}

	// A script module sees imports resolved relative to its own directory,
	// through a Loader that shares this one's cache and host-package
	// registry but advances CurrentFileDir to the module's own location
	// (spec.md §4.6 step 3's search order is always relative to "current
	// source directory", which changes as resolution descends into a
	// module).
	nested := &Loader{
		cfg:          Config{CurrentFileDir: filepath.Dir(path), SearchPaths: l.cfg.SearchPaths},
		docLoader:    l.docLoader,
		hostPackages: l.hostPackages,
		cache:        l.cache,
	}

	th := &machine.Thread{}
	ev := machine.NewEvaluator(th, prog, nested)
	if err := ev.Prepare(context.Background()); err != nil {
		return nil, err
	}

	mod := &types.ModuleRef{
		Name:      name,
		Constants: make(map[string]types.Value, len(prog.Objects)),
		Functions: make(map[string]*types.FunctionRef, len(prog.Classes)),
	}

	for objName, obj := range prog.Objects {
		if err := ev.EnsureConstructed(obj); err != nil {
			return nil, err
		}
		mod.Constants[objName] = obj
	}

	for className := range prog.Classes {
		className := className // capture for the closure below
		mod.Functions[className] = &types.FunctionRef{
			Name: className,
			Builtin: func(args []types.Value) (types.Value, error) {
				return ev.NewInstance(className, args)
			},
		}
	}

	return mod, nil
}
