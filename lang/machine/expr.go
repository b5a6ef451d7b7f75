package machine

import (
	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/token"
	"github.com/mna/hpl/lang/types"
)

// eval evaluates expr in sc, grounded on
// _examples/original_source/hpl_runtime/evaluator.py's evaluate_expression.
func (e *Evaluator) eval(expr ast.Expr, sc *Scope) (types.Value, error) {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		return types.Int(n.Value), nil
	case *ast.FloatLiteral:
		return types.Float(n.Value), nil
	case *ast.StringLiteral:
		return types.String(n.Value), nil
	case *ast.BoolLiteral:
		return types.Bool(n.Value), nil
	case *ast.NullLiteral:
		return types.NullValue, nil

	case *ast.ArrayLiteral:
		elems := make([]types.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := e.eval(el, sc)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return types.NewArray(elems), nil

	case *ast.Variable:
		v, ok := sc.Lookup(n.Name)
		if !ok {
			return nil, hplerror.New(hplerror.NameError, "UNDEFINED_VARIABLE", "undefined variable %q", n.Name).WithPos(n.Pos)
		}
		if obj, ok := v.(*types.ObjectInstance); ok {
			if err := e.ensureConstructed(obj, n.Pos); err != nil {
				return nil, err
			}
		}
		return v, nil

	case *ast.BinaryOp:
		if n.Op == token.AND || n.Op == token.OR {
			return e.evalLogical(n, sc)
		}
		left, err := e.eval(n.Left, sc)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(n.Right, sc)
		if err != nil {
			return nil, err
		}
		return evalArithmetic(n.Op, left, right, n.Pos)

	case *ast.UnaryOp:
		v, err := e.eval(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Op, v, n.Pos)

	case *ast.PostfixIncrement:
		va, ok := n.Target.(*ast.Variable)
		if !ok {
			return nil, typeErr(n.Pos, "++ requires a variable operand")
		}
		old, ok := sc.Lookup(va.Name)
		if !ok {
			return nil, hplerror.New(hplerror.NameError, "UNDEFINED_VARIABLE", "undefined variable %q", va.Name).WithPos(n.Pos)
		}
		nv, err := incrementValue(old, n.Pos)
		if err != nil {
			return nil, err
		}
		sc.Assign(va.Name, nv)
		return old, nil

	case *ast.FunctionCall:
		return e.evalFunctionCall(n, sc)

	case *ast.MethodCall:
		return e.evalMethodCall(n, sc)

	case *ast.AttrAccess:
		return e.evalAttrAccess(n, sc)

	case *ast.ArrayAccess:
		arrVal, err := e.eval(n.Array, sc)
		if err != nil {
			return nil, err
		}
		arr, ok := arrVal.(*types.Array)
		if !ok {
			return nil, typeErr(n.Pos, "cannot index into a %s", arrVal.Type())
		}
		idxVal, err := e.eval(n.Index, sc)
		if err != nil {
			return nil, err
		}
		idx, ok := idxVal.(types.Int)
		if !ok {
			return nil, typeErr(n.Pos, "array index must be an int, got %s", idxVal.Type())
		}
		if int(idx) < 0 || int(idx) >= len(arr.Elems) {
			return nil, hplerror.New(hplerror.IndexError, "INDEX_OUT_OF_RANGE",
				"array index %d out of range (length %d)", idx, len(arr.Elems)).WithPos(n.Pos)
		}
		return arr.Elems[idx], nil

	case *ast.NewObject:
		cls, ok := e.Program.Classes[n.ClassName]
		if !ok {
			return nil, hplerror.New(hplerror.NameError, "UNDEFINED_CLASS", "undefined class %q", n.ClassName).WithPos(n.Pos)
		}
		args := make([]types.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.eval(a, sc)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		obj := types.NewObjectInstance(n.ClassName, cls)
		if err := e.construct(obj, args, n.Pos); err != nil {
			return nil, err
		}
		return obj, nil

	default:
		return nil, hplerror.New(hplerror.RuntimeError, "UNHANDLED_EXPRESSION", "unhandled expression type %T", expr).WithPos(expr.Span())
	}
}

func (e *Evaluator) evalLogical(n *ast.BinaryOp, sc *Scope) (types.Value, error) {
	lv, err := e.eval(n.Left, sc)
	if err != nil {
		return nil, err
	}
	lb, ok := lv.(types.Bool)
	if !ok {
		return nil, typeErr(n.Pos, "%s requires bool operands, got %s", n.Op, lv.Type())
	}
	if n.Op == token.AND && !bool(lb) {
		return types.Bool(false), nil
	}
	if n.Op == token.OR && bool(lb) {
		return types.Bool(true), nil
	}
	rv, err := e.eval(n.Right, sc)
	if err != nil {
		return nil, err
	}
	rb, ok := rv.(types.Bool)
	if !ok {
		return nil, typeErr(n.Pos, "%s requires bool operands, got %s", n.Op, rv.Type())
	}
	if n.Op == token.AND {
		return types.Bool(lb && rb), nil
	}
	return types.Bool(lb || rb), nil
}

func (e *Evaluator) evalArgs(exprs []ast.Expr, sc *Scope) ([]types.Value, error) {
	args := make([]types.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.eval(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) evalFunctionCall(n *ast.FunctionCall, sc *Scope) (types.Value, error) {
	va, ok := n.Callee.(*ast.Variable)
	if !ok {
		return nil, typeErr(n.Pos, "call target must be a name")
	}
	args, err := e.evalArgs(n.Args, sc)
	if err != nil {
		return nil, err
	}
	if b, ok := builtins[va.Name]; ok {
		return b(e, args, n.Pos)
	}
	if fn, ok := e.Program.Functions[va.Name]; ok {
		return e.callFunction(fn, args, n.Pos)
	}
	return nil, hplerror.New(hplerror.NameError, "UNDEFINED_FUNCTION", "undefined function %q", va.Name).WithPos(n.Pos)
}

func (e *Evaluator) evalMethodCall(n *ast.MethodCall, sc *Scope) (types.Value, error) {
	recv, err := e.eval(n.Receiver, sc)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(n.Args, sc)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case *types.ObjectInstance:
		if err := e.ensureConstructed(r, n.Pos); err != nil {
			return nil, err
		}
		fn, ok := r.Class.LookupMethod(n.Method)
		if !ok {
			return nil, hplerror.New(hplerror.MethodNotFound, "METHOD_NOT_FOUND",
				"method %q not found in class %q", n.Method, r.Class.Name).WithPos(n.Pos)
		}
		return e.callMethod(r, fn, args, n.Pos)
	case *types.ModuleRef:
		fn, ok := r.Functions[n.Method]
		if !ok {
			return nil, hplerror.New(hplerror.NameError, "UNDEFINED_FUNCTION",
				"module %q has no function %q", r.Name, n.Method).WithPos(n.Pos)
		}
		if fn.Builtin != nil {
			v, err := fn.Builtin(args)
			if err != nil {
				if herr, ok := err.(*hplerror.Error); ok {
					return nil, herr.WithPos(n.Pos)
				}
				return nil, hplerror.New(hplerror.RuntimeError, "MODULE_FUNCTION_ERROR", "%s", err).WithPos(n.Pos)
			}
			return v, nil
		}
		return e.callFunction(fn, args, n.Pos)
	default:
		return nil, typeErr(n.Pos, "cannot call method %q on a %s", n.Method, recv.Type())
	}
}

// evalAttrAccess implements spec.md §4.6's ModuleRef disambiguation: a bare
// `module.name` is tried first as a constant lookup, then (zero-arg) as a
// function call on miss. ObjectInstance access is a plain attribute read.
func (e *Evaluator) evalAttrAccess(n *ast.AttrAccess, sc *Scope) (types.Value, error) {
	recv, err := e.eval(n.Receiver, sc)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case *types.ObjectInstance:
		if err := e.ensureConstructed(r, n.Pos); err != nil {
			return nil, err
		}
		v, ok := r.GetAttr(n.Name)
		if !ok {
			return nil, hplerror.New(hplerror.NameError, "UNDEFINED_ATTRIBUTE",
				"undefined attribute %q on object %q", n.Name, r.Name).WithPos(n.Pos)
		}
		return v, nil
	case *types.ModuleRef:
		if v, ok := r.Constants[n.Name]; ok {
			return v, nil
		}
		fn, ok := r.Functions[n.Name]
		if !ok {
			return nil, hplerror.New(hplerror.NameError, "UNDEFINED_ATTRIBUTE",
				"module %q has no member %q", r.Name, n.Name).WithPos(n.Pos)
		}
		if fn.Builtin != nil {
			v, err := fn.Builtin(nil)
			if err != nil {
				return nil, hplerror.New(hplerror.RuntimeError, "MODULE_FUNCTION_ERROR", "%s", err).WithPos(n.Pos)
			}
			return v, nil
		}
		return e.callFunction(fn, nil, n.Pos)
	default:
		return nil, typeErr(n.Pos, "cannot access attribute %q on a %s", n.Name, recv.Type())
	}
}
