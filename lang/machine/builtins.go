package machine

import (
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/token"
	"github.com/mna/hpl/lang/types"
)

// builtinFunc is a host-implemented HPL function resolved before any
// user-defined function of the same name (spec.md §4.4). Grounded on
// _examples/original_source/hpl_runtime/evaluator.py's handling of
// echo/len/int/str/type/abs/max/min inside evaluate_expression.
type builtinFunc func(e *Evaluator, args []types.Value, pos token.Position) (types.Value, error)

var builtins = map[string]builtinFunc{
	"echo": builtinEcho,
	"len":  builtinLen,
	"int":  builtinInt,
	"str":  builtinStr,
	"type": builtinType,
	"abs":  builtinAbs,
	"max":  builtinMinMax(false),
	"min":  builtinMinMax(true),
}

func arityErr(name string, pos token.Position, want, got int) error {
	return hplerror.New(hplerror.TypeError, "ARITY_ERROR", "%s() takes %d argument(s), got %d", name, want, got).WithPos(pos)
}

func builtinEcho(e *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("echo", pos, 1, len(args))
	}
	e.Thread.stdout.Write([]byte(args[0].String()))
	e.Thread.stdout.Write([]byte("\n"))
	return types.NullValue, nil
}

func builtinLen(_ *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("len", pos, 1, len(args))
	}
	switch v := args[0].(type) {
	case types.String:
		return types.Int(len(v)), nil
	case *types.Array:
		return types.Int(len(v.Elems)), nil
	default:
		return nil, typeErr(pos, "len() requires a string or array, got %s", v.Type())
	}
}

func builtinInt(_ *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("int", pos, 1, len(args))
	}
	switch v := args[0].(type) {
	case types.Int:
		return v, nil
	case types.Float:
		return types.Int(int64(v)), nil
	case types.Bool:
		if v {
			return types.Int(1), nil
		}
		return types.Int(0), nil
	case types.String:
		return parseIntLiteral(string(v), pos)
	default:
		return nil, typeErr(pos, "int() requires a numeric, bool or string argument, got %s", v.Type())
	}
}

func builtinStr(_ *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("str", pos, 1, len(args))
	}
	return types.String(args[0].String()), nil
}

func builtinType(_ *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("type", pos, 1, len(args))
	}
	if obj, ok := args[0].(*types.ObjectInstance); ok {
		return types.String(obj.Class.Name), nil
	}
	return types.String(args[0].Type()), nil
}

func builtinAbs(_ *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
	if len(args) != 1 {
		return nil, arityErr("abs", pos, 1, len(args))
	}
	switch v := args[0].(type) {
	case types.Int:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case types.Float:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	default:
		return nil, typeErr(pos, "abs() requires a numeric argument, got %s", v.Type())
	}
}

// builtinMinMax returns a builtin implementing `min` (wantLess=true) or
// `max` (wantLess=false) over one or more numeric arguments.
func builtinMinMax(wantLess bool) builtinFunc {
	name := "max"
	if wantLess {
		name = "min"
	}
	return func(_ *Evaluator, args []types.Value, pos token.Position) (types.Value, error) {
		if len(args) == 0 {
			return nil, hplerror.New(hplerror.TypeError, "ARITY_ERROR", "%s() requires at least one argument", name).WithPos(pos)
		}
		best := args[0]
		bestF, _, ok := asNumber(best)
		if !ok {
			return nil, typeErr(pos, "%s() requires numeric arguments, got %s", name, best.Type())
		}
		for _, v := range args[1:] {
			f, _, ok := asNumber(v)
			if !ok {
				return nil, typeErr(pos, "%s() requires numeric arguments, got %s", name, v.Type())
			}
			if (wantLess && f < bestF) || (!wantLess && f > bestF) {
				best, bestF = v, f
			}
		}
		return best, nil
	}
}
