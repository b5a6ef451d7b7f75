package machine

import (
	"context"
	"fmt"
	"strings"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/token"
	"github.com/mna/hpl/lang/types"
)

// ModuleLoader resolves an `import` name to a module value (spec.md §4.6).
// lang/module.Loader implements this; Evaluator depends only on the
// interface so the two packages don't import each other (lang/module
// itself needs lang/loader to parse local `.hpl` script modules, so the
// dependency must run machine -> module, never the reverse).
type ModuleLoader interface {
	Load(name string) (*types.ModuleRef, error)
}

// Evaluator is the tree-walking evaluator of spec.md §4.4: it executes a
// linked Program's entry point against a Thread, dispatching to built-ins,
// user functions, and object methods, and resolving imports through a
// ModuleLoader. Grounded on
// _examples/original_source/hpl_runtime/evaluator.py's HPLEvaluator.
type Evaluator struct {
	Thread  *Thread
	Program *Program
	Loader  ModuleLoader

	global map[string]types.Value
	tr     *tracer // non-nil only for the duration of a RunDebug call
}

// NewEvaluator returns an Evaluator ready to Run prog on th, resolving
// `import` statements through loader.
func NewEvaluator(th *Thread, prog *Program, loader ModuleLoader) *Evaluator {
	e := &Evaluator{Thread: th, Program: prog, Loader: loader, global: make(map[string]types.Value)}
	for name, obj := range prog.Objects {
		e.global[name] = obj
	}

	// Bind every function and method declared in prog to this evaluator's
	// global table: they are closed over it for the rest of the program's
	// life (spec.md §3), including when lang/module later exposes some of
	// them as a module's exported functions and calls them from a different
	// evaluator's scope.
	for _, fn := range prog.Functions {
		fn.Closure = e.global
	}
	for _, cls := range prog.Classes {
		for _, fn := range cls.Methods {
			fn.Closure = e.global
		}
	}
	if prog.MainFunc != nil {
		prog.MainFunc.Closure = e.global
	}

	return e
}

// Prepare initializes th and resolves prog's own `import` declarations into
// its global scope, without running main or a call directive. Exported for
// lang/module: a local script module must have its own imports resolved and
// its Thread ready before the module loader constructs its top-level
// objects and wraps its classes as callable constructors.
func (e *Evaluator) Prepare(ctx context.Context) error {
	e.Thread.init(ctx)
	return e.bindImports()
}

// Run resolves the document's top-level imports, then executes either the
// `call:` directive (if present) or the `main:` function, per spec.md §6's
// "at least one of main or call must be present for execution".
func (e *Evaluator) Run(ctx context.Context) (types.Value, error) {
	e.Thread.init(ctx)

	if err := e.bindImports(); err != nil {
		return nil, err
	}

	switch {
	case e.Program.Call != nil:
		return e.runCallDirective(e.Program.Call)
	case e.Program.MainFunc != nil:
		return e.callFunction(e.Program.MainFunc, nil, e.Program.MainFunc.Body.Pos)
	default:
		return nil, hplerror.New(hplerror.RuntimeError, "NO_ENTRY_POINT",
			"document has neither a main function nor a call directive")
	}
}

func (e *Evaluator) bindImports() error {
	for _, imp := range e.Program.Imports {
		mod, err := e.Loader.Load(imp.Name)
		if err != nil {
			if herr, ok := err.(*hplerror.Error); ok {
				return herr.WithPos(imp.Pos)
			}
			return hplerror.New(hplerror.ImportError, "IMPORT_ERROR", "%s", err).WithPos(imp.Pos)
		}
		alias := imp.Alias
		if alias == "" {
			alias = imp.Name
		}
		e.global[alias] = mod
	}
	return nil
}

func (e *Evaluator) runCallDirective(cd *ast.CallDirective) (types.Value, error) {
	sc := NewScope(e.global)
	args := make([]types.Value, 0, len(cd.Args))
	for _, a := range cd.Args {
		v, err := e.eval(a, sc)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if cd.Receiver != "" {
		return e.invokeMethodTarget(cd.Receiver, cd.Method, args, cd.Pos)
	}
	return e.invokeFunctionTarget(cd.Target, args, cd.Pos)
}

// RunCall resolves the document's imports, then runs target (either a bare
// function name or "object.method") with args already evaluated, instead
// of the document's own `call:` directive or `main:` function. Exported
// for lang/sandbox: a Job's CallTarget implements the optional callTarget
// input of spec.md §6's Execute/Debug API, which overrides whatever entry
// point the document itself declares.
func (e *Evaluator) RunCall(ctx context.Context, target string, args []types.Value) (types.Value, error) {
	e.Thread.init(ctx)
	if err := e.bindImports(); err != nil {
		return nil, err
	}
	if dot := strings.LastIndexByte(target, '.'); dot >= 0 {
		return e.invokeMethodTarget(target[:dot], target[dot+1:], args, token.Position{})
	}
	return e.invokeFunctionTarget(target, args, token.Position{})
}

func (e *Evaluator) invokeMethodTarget(receiver, method string, args []types.Value, pos token.Position) (types.Value, error) {
	v, ok := e.global[receiver]
	if !ok {
		return nil, hplerror.New(hplerror.NameError, "UNDEFINED_OBJECT", "undefined object %q", receiver).WithPos(pos)
	}
	obj, ok := v.(*types.ObjectInstance)
	if !ok {
		return nil, hplerror.New(hplerror.TypeError, "NOT_AN_OBJECT", "%q is not an object", receiver).WithPos(pos)
	}
	if err := e.ensureConstructed(obj, pos); err != nil {
		return nil, err
	}
	fn, ok := obj.Class.LookupMethod(method)
	if !ok {
		return nil, hplerror.New(hplerror.MethodNotFound, "METHOD_NOT_FOUND",
			"method %q not found in class %q", method, obj.Class.Name).WithPos(pos)
	}
	return e.callMethod(obj, fn, args, pos)
}

func (e *Evaluator) invokeFunctionTarget(target string, args []types.Value, pos token.Position) (types.Value, error) {
	if target == "main" && e.Program.MainFunc != nil {
		return e.callFunction(e.Program.MainFunc, args, pos)
	}
	fn, ok := e.Program.Functions[target]
	if !ok {
		return nil, hplerror.New(hplerror.NameError, "UNKNOWN_CALL_TARGET", "unknown call target %q", target).WithPos(pos)
	}
	return e.callFunction(fn, args, pos)
}

// callFunction runs fn as a plain (non-method) activation: a fresh local
// frame over the shared global table, parameters bound positionally, no
// `this` binding (spec.md §3: "`this` is bound only within method
// activations").
func (e *Evaluator) callFunction(fn *types.FunctionRef, args []types.Value, pos token.Position) (types.Value, error) {
	label := fmt.Sprintf("%s()", fn.Name)
	if !e.Thread.pushFrame(label) {
		return nil, hplerror.New(hplerror.RuntimeError, "STACK_OVERFLOW", "maximum call stack depth exceeded").WithPos(pos)
	}
	defer e.Thread.popFrame()
	e.traceCall(label)
	defer e.traceReturn(label)

	global := e.global
	if fn.Closure != nil {
		global = fn.Closure
	}
	sc := NewScope(global)
	bindParams(sc, fn.Params, args)

	c, err := e.execBlock(fn.Body, sc)
	if err != nil {
		return nil, wrapFrame(err, label)
	}
	if c.kind == ctrlReturn {
		return c.value, nil
	}
	return types.NullValue, nil
}

// callMethod runs fn as a method activation on obj: same as callFunction
// but with `this` bound to obj in the local frame (spec.md §4.5).
func (e *Evaluator) callMethod(obj *types.ObjectInstance, fn *types.FunctionRef, args []types.Value, pos token.Position) (types.Value, error) {
	label := fmt.Sprintf("%s.%s()", obj.Name, methodShortName(fn.Name))
	if !e.Thread.pushFrame(label) {
		return nil, hplerror.New(hplerror.RuntimeError, "STACK_OVERFLOW", "maximum call stack depth exceeded").WithPos(pos)
	}
	defer e.Thread.popFrame()
	e.traceCall(label)
	defer e.traceReturn(label)

	global := e.global
	if fn.Closure != nil {
		global = fn.Closure
	}
	sc := NewScope(global)
	bindParams(sc, fn.Params, args)
	sc.Local["this"] = obj

	c, err := e.execBlock(fn.Body, sc)
	if err != nil {
		return nil, wrapFrame(err, label)
	}
	if c.kind == ctrlReturn {
		return c.value, nil
	}
	return types.NullValue, nil
}

func methodShortName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}

func bindParams(sc *Scope, params []string, args []types.Value) {
	for i, name := range params {
		if i >= len(args) {
			break
		}
		sc.Local[name] = args[i]
	}
}

func wrapFrame(err error, label string) error {
	if herr, ok := err.(*hplerror.Error); ok {
		return herr.PushFrame(label)
	}
	return err
}
