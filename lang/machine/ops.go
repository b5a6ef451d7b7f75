package machine

import (
	"strconv"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/token"
	"github.com/mna/hpl/lang/types"
)

func typeErr(pos token.Position, format string, args ...any) error {
	return hplerror.New(hplerror.TypeError, "TYPE_ERROR", format, args...).WithPos(pos)
}

func arithErr(pos token.Position, format string, args ...any) error {
	return hplerror.New(hplerror.ArithmeticError, "ARITHMETIC_ERROR", format, args...).WithPos(pos)
}

func asNumber(v types.Value) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case types.Int:
		return float64(n), true, true
	case types.Float:
		return float64(n), false, true
	default:
		return 0, false, false
	}
}

// evalArithmetic implements every binary operator except `&&`/`||` (which
// short-circuit and so must evaluate their operands lazily in the caller),
// grounded on
// _examples/original_source/hpl_runtime/evaluator.py's _eval_binary_op and
// _check_numeric_operands.
func evalArithmetic(op token.Token, left, right types.Value, pos token.Position) (types.Value, error) {
	if op == token.PLUS {
		lf, lInt, lNum := asNumber(left)
		rf, rInt, rNum := asNumber(right)
		if lNum && rNum {
			if lInt && rInt {
				return types.Int(int64(lf) + int64(rf)), nil
			}
			return types.Float(lf + rf), nil
		}
		// Per spec.md's string-concatenation overload of `+`: any non-numeric
		// operand forces the whole expression to string concatenation.
		return types.String(left.String() + right.String()), nil
	}

	switch op {
	case token.EQL:
		return types.Bool(valuesEqual(left, right)), nil
	case token.NEQ:
		return types.Bool(!valuesEqual(left, right)), nil
	}

	lf, lInt, lNum := asNumber(left)
	rf, rInt, rNum := asNumber(right)
	if lNum && rNum {
		switch op {
		case token.MINUS:
			if lInt && rInt {
				return types.Int(int64(lf) - int64(rf)), nil
			}
			return types.Float(lf - rf), nil
		case token.STAR:
			if lInt && rInt {
				return types.Int(int64(lf) * int64(rf)), nil
			}
			return types.Float(lf * rf), nil
		case token.SLASH:
			if rf == 0 {
				return nil, arithErr(pos, "division by zero")
			}
			if lInt && rInt {
				return types.Int(int64(lf) / int64(rf)), nil
			}
			return types.Float(lf / rf), nil
		case token.PERCENT:
			if rf == 0 {
				return nil, arithErr(pos, "modulo by zero")
			}
			if lInt && rInt {
				return types.Int(int64(lf) % int64(rf)), nil
			}
			return nil, typeErr(pos, "%% requires integer operands")
		case token.LT:
			return types.Bool(lf < rf), nil
		case token.LE:
			return types.Bool(lf <= rf), nil
		case token.GT:
			return types.Bool(lf > rf), nil
		case token.GE:
			return types.Bool(lf >= rf), nil
		}
	}

	// Lexicographic ordering on strings is permitted for the comparison
	// operators (not `+`, handled above).
	if ls, ok := left.(types.String); ok {
		if rs, ok := right.(types.String); ok {
			switch op {
			case token.LT:
				return types.Bool(ls < rs), nil
			case token.LE:
				return types.Bool(ls <= rs), nil
			case token.GT:
				return types.Bool(ls > rs), nil
			case token.GE:
				return types.Bool(ls >= rs), nil
			}
		}
	}

	return nil, typeErr(pos, "unsupported operand types %s and %s for %s", left.Type(), right.Type(), op)
}

// valuesEqual implements type-and-value equality (spec.md §4.4): values of
// different types are never equal, even when numerically equivalent (Int(1) != Float(1.0)).
func valuesEqual(left, right types.Value) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case types.Int:
		return l == right.(types.Int)
	case types.Float:
		return l == right.(types.Float)
	case types.Bool:
		return l == right.(types.Bool)
	case types.String:
		return l == right.(types.String)
	case types.Null:
		return true
	case *types.Array:
		r := right.(*types.Array)
		if len(l.Elems) != len(r.Elems) {
			return false
		}
		for i := range l.Elems {
			if !valuesEqual(l.Elems[i], r.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

// evalUnary implements `!` (Bool only) and `-` (Int/Float only).
func evalUnary(op token.Token, v types.Value, pos token.Position) (types.Value, error) {
	switch op {
	case token.NOT:
		b, ok := v.(types.Bool)
		if !ok {
			return nil, typeErr(pos, "! requires a bool operand, got %s", v.Type())
		}
		return types.Bool(!b), nil
	case token.MINUS:
		switch n := v.(type) {
		case types.Int:
			return -n, nil
		case types.Float:
			return -n, nil
		default:
			return nil, typeErr(pos, "unary - requires a numeric operand, got %s", v.Type())
		}
	default:
		return nil, typeErr(pos, "unsupported unary operator %s", op)
	}
}

// incrementValue implements the `++` family (postfix expression and the
// standalone increment statement): numeric-only, per spec.md §4.4.
func incrementValue(v types.Value, pos token.Position) (types.Value, error) {
	switch n := v.(type) {
	case types.Int:
		return n + 1, nil
	case types.Float:
		return n + 1, nil
	default:
		return nil, typeErr(pos, "++ requires a numeric operand, got %s", v.Type())
	}
}

// parseIntLiteral is used by the `int()` built-in to convert a string
// operand, mirroring Python's int(str) conversion errors as a TypeError.
func parseIntLiteral(s string, pos token.Position) (types.Value, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, typeErr(pos, "cannot convert %q to int", s)
	}
	return types.Int(n), nil
}
