package machine

import (
	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/types"
)

// execBlock runs every statement of blk in sc in order, stopping early on
// the first non-ctrlNone control signal or error (spec.md §4.4's statement
// dispatch table).
func (e *Evaluator) execBlock(blk *ast.Block, sc *Scope) (ctrl, error) {
	for _, stmt := range blk.Stmts {
		c, err := e.execStmt(stmt, sc)
		if err != nil {
			return ctrl{}, err
		}
		if c.kind != ctrlNone {
			return c, nil
		}
	}
	return ctrlFallthrough, nil
}

func (e *Evaluator) execStmt(stmt ast.Stmt, sc *Scope) (ctrl, error) {
	if e.Thread.ctx.Err() != nil {
		return ctrl{}, hplerror.New(hplerror.TimeoutError, "CANCELLED", "execution cancelled").WithPos(stmt.Span())
	}
	e.Thread.steps++
	if e.Thread.MaxSteps > 0 && int(e.Thread.steps) > e.Thread.MaxSteps {
		return ctrl{}, hplerror.New(hplerror.RuntimeError, "STEP_LIMIT_EXCEEDED", "step limit exceeded").WithPos(stmt.Span())
	}
	e.traceStmt(stmt, sc)

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := e.eval(s.X, sc)
		return ctrlFallthrough, err

	case *ast.AssignStmt:
		v, err := e.eval(s.Value, sc)
		if err != nil {
			return ctrl{}, err
		}
		sc.Assign(s.Target, v)
		return ctrlFallthrough, nil

	case *ast.ArrayAssignStmt:
		arrVal, err := e.eval(s.Array, sc)
		if err != nil {
			return ctrl{}, err
		}
		arr, ok := arrVal.(*types.Array)
		if !ok {
			return ctrl{}, typeErr(s.Pos, "cannot index into a %s", arrVal.Type())
		}
		idxVal, err := e.eval(s.Index, sc)
		if err != nil {
			return ctrl{}, err
		}
		idx, ok := idxVal.(types.Int)
		if !ok {
			return ctrl{}, typeErr(s.Pos, "array index must be an int, got %s", idxVal.Type())
		}
		if int(idx) < 0 || int(idx) >= len(arr.Elems) {
			return ctrl{}, hplerror.New(hplerror.IndexError, "INDEX_OUT_OF_RANGE",
				"array index %d out of range (length %d)", idx, len(arr.Elems)).WithPos(s.Pos)
		}
		v, err := e.eval(s.Value, sc)
		if err != nil {
			return ctrl{}, err
		}
		arr.Elems[idx] = v
		return ctrlFallthrough, nil

	case *ast.AttrAssignStmt:
		recvVal, err := e.eval(s.Receiver, sc)
		if err != nil {
			return ctrl{}, err
		}
		obj, ok := recvVal.(*types.ObjectInstance)
		if !ok {
			return ctrl{}, typeErr(s.Pos, "cannot set attribute %q on a %s", s.Name, recvVal.Type())
		}
		v, err := e.eval(s.Value, sc)
		if err != nil {
			return ctrl{}, err
		}
		obj.SetAttr(s.Name, v)
		return ctrlFallthrough, nil

	case *ast.IncrementStatement:
		old, ok := sc.Lookup(s.Target)
		if !ok {
			return ctrl{}, hplerror.New(hplerror.NameError, "UNDEFINED_VARIABLE", "undefined variable %q", s.Target).WithPos(s.Pos)
		}
		nv, err := incrementValue(old, s.Pos)
		if err != nil {
			return ctrl{}, err
		}
		sc.Assign(s.Target, nv)
		return ctrlFallthrough, nil

	case *ast.ReturnStatement:
		if s.Value == nil {
			return ctrl{kind: ctrlReturn, value: types.NullValue}, nil
		}
		v, err := e.eval(s.Value, sc)
		if err != nil {
			return ctrl{}, err
		}
		return ctrl{kind: ctrlReturn, value: v}, nil

	case *ast.BreakStatement:
		return ctrl{kind: ctrlBreak}, nil

	case *ast.ContinueStatement:
		return ctrl{kind: ctrlContinue}, nil

	case *ast.EchoStatement:
		v, err := e.eval(s.Value, sc)
		if err != nil {
			return ctrl{}, err
		}
		e.Thread.stdout.Write([]byte(v.String()))
		e.Thread.stdout.Write([]byte("\n"))
		return ctrlFallthrough, nil

	case *ast.IfStatement:
		cv, err := e.eval(s.Cond, sc)
		if err != nil {
			return ctrl{}, err
		}
		b, ok := cv.(types.Bool)
		if !ok {
			return ctrl{}, typeErr(s.Pos, "if condition must be a bool, got %s", cv.Type())
		}
		if bool(b) {
			return e.execBlock(s.Then, sc)
		}
		if s.Else != nil {
			return e.execBlock(s.Else, sc)
		}
		return ctrlFallthrough, nil

	case *ast.WhileStatement:
		for {
			cv, err := e.eval(s.Cond, sc)
			if err != nil {
				return ctrl{}, err
			}
			b, ok := cv.(types.Bool)
			if !ok {
				return ctrl{}, typeErr(s.Pos, "while condition must be a bool, got %s", cv.Type())
			}
			if !b {
				return ctrlFallthrough, nil
			}
			c, err := e.execBlock(s.Body, sc)
			if err != nil {
				return ctrl{}, err
			}
			switch c.kind {
			case ctrlReturn:
				return c, nil
			case ctrlBreak:
				return ctrlFallthrough, nil
			}
		}

	case *ast.ForStatement:
		if s.Init != nil {
			if _, err := e.execStmt(s.Init, sc); err != nil {
				return ctrl{}, err
			}
		}
		for {
			if s.Cond != nil {
				cv, err := e.eval(s.Cond, sc)
				if err != nil {
					return ctrl{}, err
				}
				b, ok := cv.(types.Bool)
				if !ok {
					return ctrl{}, typeErr(s.Pos, "for condition must be a bool, got %s", cv.Type())
				}
				if !b {
					return ctrlFallthrough, nil
				}
			}
			c, err := e.execBlock(s.Body, sc)
			if err != nil {
				return ctrl{}, err
			}
			if c.kind == ctrlReturn {
				return c, nil
			}
			if c.kind == ctrlBreak {
				return ctrlFallthrough, nil
			}
			if s.Post != nil {
				if _, err := e.execStmt(s.Post, sc); err != nil {
					return ctrl{}, err
				}
			}
		}

	case *ast.TryCatchStatement:
		c, err := e.execBlock(s.Body, sc)
		if err == nil {
			return c, nil
		}
		// spec.md §7: try/catch captures every language-level error kind but
		// not TimeoutError or MemoryLimitExceeded, which are outside the
		// program's reach (the sandbox's termination signal, not a language
		// exception).
		if herr, ok := err.(*hplerror.Error); ok && (herr.Kind == hplerror.TimeoutError || herr.Kind == hplerror.MemoryLimitError) {
			return ctrl{}, err
		}
		if s.Catch == nil {
			return ctrl{}, err
		}
		if s.Catch.ErrName != "" {
			sc.Local[s.Catch.ErrName] = types.String(errorMessage(err))
		}
		e.traceCatch(s.Pos, sc)
		return e.execBlock(s.Catch.Body, sc)

	case *ast.ImportStatement:
		mod, err := e.Loader.Load(s.Name)
		if err != nil {
			if herr, ok := err.(*hplerror.Error); ok {
				return ctrl{}, herr.WithPos(s.Pos)
			}
			return ctrl{}, hplerror.New(hplerror.ImportError, "IMPORT_ERROR", "%s", err).WithPos(s.Pos)
		}
		alias := s.Alias
		if alias == "" {
			alias = s.Name
		}
		sc.Global[alias] = mod
		return ctrlFallthrough, nil

	default:
		return ctrl{}, hplerror.New(hplerror.RuntimeError, "UNHANDLED_STATEMENT", "unhandled statement type %T", stmt).WithPos(stmt.Span())
	}
}

func errorMessage(err error) string {
	if herr, ok := err.(*hplerror.Error); ok {
		return herr.Message
	}
	return err.Error()
}
