package machine

import "github.com/mna/hpl/lang/types"

// ctrlKind distinguishes why a block execution unwound early. Modeled as a
// small tagged result type per SPEC_FULL.md's design note ("model as a
// small tagged result type returned up the call chain; do not rely on
// host-language exceptions for normal control flow"), translating the
// Python original's ReturnValue/BreakException/ContinueException
// (_examples/original_source/hpl_runtime/evaluator.py) into ordinary Go
// return values instead of panics.
type ctrlKind uint8

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// ctrl is returned by execStmt/execBlock to signal that execution should
// unwind: ctrlNone means "keep going", ctrlReturn carries a function's
// return value up to the nearest enclosing activation (spec.md §3's
// "return unwinds to the nearest enclosing function activation and no
// further"), and ctrlBreak/ctrlContinue unwind to the nearest enclosing
// loop only.
type ctrl struct {
	kind  ctrlKind
	value types.Value
}

var ctrlFallthrough = ctrl{kind: ctrlNone}
