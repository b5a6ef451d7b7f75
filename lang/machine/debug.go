package machine

import (
	"context"
	"time"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/parser"
	"github.com/mna/hpl/lang/token"
	"github.com/mna/hpl/lang/types"
)

// TraceType classifies a TraceEvent by what kind of statement or call
// transition produced it (spec.md §4.7's typed execution trace).
type TraceType string

const (
	TraceFunctionCall   TraceType = "FUNCTION_CALL"
	TraceFunctionReturn TraceType = "FUNCTION_RETURN"
	TraceVariableAssign TraceType = "VARIABLE_ASSIGN"
	TraceArrayAssign    TraceType = "ARRAY_ASSIGN"
	TraceIfBranch       TraceType = "IF_BRANCH"
	TraceLoopIter       TraceType = "LOOP_ITER"
	TraceErrorCatch     TraceType = "ERROR_CATCH"
	TraceImport         TraceType = "IMPORT"
)

// TraceEvent records one executed statement or call transition: its kind,
// source position, a few kind-specific details, the call stack active at
// the time (deepest frame first), and when it happened, per spec.md §4.7's
// execution trace.
type TraceEvent struct {
	Type      TraceType
	Pos       token.Position
	Details   map[string]string
	CallStack []string
	Timestamp time.Time
}

// VariableSnapshot pairs a source position with a copy of the local frame
// active there, letting a debug client replay how variables changed across
// the statements RunDebug snapshots. GlobalKeys lists the global table's keys
// without copying their values (spec.md §4.7: "Copies are shallow ... for
// size control" — the global table is shared and can be large; only the
// local frame, which is per-activation and small, is copied in full).
type VariableSnapshot struct {
	Pos        token.Position
	Locals     map[string]types.Value
	GlobalKeys []string
	Timestamp  time.Time
}

// FunctionStats tallies how often a function or method ran, how long its
// calls took, and how many statements it executed in total, across the
// whole run.
type FunctionStats struct {
	Calls    int
	StmtExec int

	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	AvgTime   time.Duration

	start []time.Time // open call timestamps, pushed on call and popped on return
}

func (st *FunctionStats) recordReturn(d time.Duration) {
	st.TotalTime += d
	if st.MinTime == 0 || d < st.MinTime {
		st.MinTime = d
	}
	if d > st.MaxTime {
		st.MaxTime = d
	}
	st.AvgTime = st.TotalTime / time.Duration(st.Calls)
}

// BreakpointHit is delivered synchronously to a DebugOptions.OnBreakpoint
// hook when execution reaches one of the requested breakpoint lines.
type BreakpointHit struct {
	Pos       token.Position
	Locals    map[string]types.Value
	CallStack []string
}

// Breakpoint is one requested break location: a line, an optional guard
// expression (source text, re-evaluated against the local scope active at
// that line each time it's reached), and whether it is currently active
// (spec.md §4.7: "a set of {line, condition?, enabled, hitCount}").
type Breakpoint struct {
	Line      int
	Condition string // empty means unconditional
	Enabled   bool
}

// DebugOptions configures a RunDebug call: which source lines to break on
// and the synchronous callback to invoke when one is hit.
type DebugOptions struct {
	Breakpoints  []Breakpoint
	OnBreakpoint func(BreakpointHit)
}

// breakpointState is a Breakpoint plus its running hit count and its
// pre-parsed condition expression (parsed once in newTracer rather than on
// every statement the evaluator executes).
type breakpointState struct {
	Breakpoint
	cond     ast.Expr
	condErr  error
	hitCount int
}

// DebugResult is the result of RunDebug: the program's return value plus
// the full instrumentation spec.md §4.7 requires from the debug evaluator.
type DebugResult struct {
	Value            types.Value
	Trace            []TraceEvent
	Snapshots        []VariableSnapshot
	CallStackHistory [][]string
	FunctionStats    map[string]*FunctionStats
	LineCoverage     map[int]int
	BreakpointHits   []BreakpointHit
	BreakpointCounts map[int]int // line -> hitCount, for the breakpoints configured in DebugOptions
}

// tracer accumulates debug instrumentation as the plain evaluator runs;
// attaching one to an Evaluator (via RunDebug) turns every execStmt/
// callFunction/callMethod into an instrumentation point, instead of
// maintaining a second, parallel tree-walker.
type tracer struct {
	breakpoints map[int]*breakpointState
	onBreak     func(BreakpointHit)

	trace        []TraceEvent
	snapshots    []VariableSnapshot
	stackHistory [][]string
	funcStats    map[string]*FunctionStats
	lineHits     map[int]int
	breakHits    []BreakpointHit
}

func newTracer(opts DebugOptions) *tracer {
	tr := &tracer{
		breakpoints: make(map[int]*breakpointState, len(opts.Breakpoints)),
		onBreak:     opts.OnBreakpoint,
		funcStats:   make(map[string]*FunctionStats),
		lineHits:    make(map[int]int),
	}
	for _, bp := range opts.Breakpoints {
		st := &breakpointState{Breakpoint: bp}
		if bp.Condition != "" {
			st.cond, st.condErr = parser.ParseExpr("<breakpoint>", []byte(bp.Condition))
		}
		tr.breakpoints[bp.Line] = st
	}
	return tr
}

func copyLocals(sc *Scope) map[string]types.Value {
	out := make(map[string]types.Value, len(sc.Local))
	for k, v := range sc.Local {
		out[k] = v
	}
	return out
}

func globalKeys(sc *Scope) []string {
	out := make([]string, 0, len(sc.Global))
	for k := range sc.Global {
		out = append(out, k)
	}
	return out
}

func (tr *tracer) emit(typ TraceType, pos token.Position, details map[string]string, callStack []string, sc *Scope) {
	now := time.Now()
	tr.trace = append(tr.trace, TraceEvent{
		Type:      typ,
		Pos:       pos,
		Details:   details,
		CallStack: callStack,
		Timestamp: now,
	})
	if sc != nil {
		tr.snapshots = append(tr.snapshots, VariableSnapshot{
			Pos: pos, Locals: copyLocals(sc), GlobalKeys: globalKeys(sc), Timestamp: now,
		})
	}
	tr.lineHits[pos.Line]++
}

// checkBreakpoint evaluates any breakpoint registered on pos.Line and
// reports a hit if it is enabled and its condition (if any) evaluates
// truthy in sc. Needs e (not just tr) because a condition is an arbitrary
// HPL expression that may reference locals or call built-ins.
func (e *Evaluator) checkBreakpoint(pos token.Position, sc *Scope) {
	bp, ok := e.tr.breakpoints[pos.Line]
	if !ok || !bp.Enabled {
		return
	}
	if bp.cond != nil {
		if bp.condErr != nil {
			return
		}
		v, err := e.eval(bp.cond, sc)
		if err != nil {
			return
		}
		b, ok := v.(types.Bool)
		if !ok || !bool(b) {
			return
		}
	}
	bp.hitCount++
	hit := BreakpointHit{Pos: pos, Locals: copyLocals(sc), CallStack: e.Thread.CallStack()}
	e.tr.breakHits = append(e.tr.breakHits, hit)
	if e.tr.onBreak != nil {
		e.tr.onBreak(hit)
	}
}

func (tr *tracer) onCall(label string, callStack []string) {
	st, ok := tr.funcStats[label]
	if !ok {
		st = &FunctionStats{}
		tr.funcStats[label] = st
	}
	st.Calls++
	st.start = append(st.start, time.Now())
	tr.stackHistory = append(tr.stackHistory, callStack)
	tr.trace = append(tr.trace, TraceEvent{
		Type:      TraceFunctionCall,
		CallStack: callStack,
		Details:   map[string]string{"function": label},
		Timestamp: time.Now(),
	})
}

func (tr *tracer) onReturn(label string, callStack []string) {
	st, ok := tr.funcStats[label]
	if !ok || len(st.start) == 0 {
		return
	}
	n := len(st.start) - 1
	started := st.start[n]
	st.start = st.start[:n]
	st.recordReturn(time.Since(started))
	tr.trace = append(tr.trace, TraceEvent{
		Type:      TraceFunctionReturn,
		CallStack: callStack,
		Details:   map[string]string{"function": label},
		Timestamp: time.Now(),
	})
}

func (tr *tracer) result(value types.Value) *DebugResult {
	counts := make(map[int]int, len(tr.breakpoints))
	for line, bp := range tr.breakpoints {
		counts[line] = bp.hitCount
	}
	return &DebugResult{
		Value:            value,
		Trace:            tr.trace,
		Snapshots:        tr.snapshots,
		CallStackHistory: tr.stackHistory,
		FunctionStats:    tr.funcStats,
		LineCoverage:     tr.lineHits,
		BreakpointHits:   tr.breakHits,
		BreakpointCounts: counts,
	}
}

// RunDebug runs the program exactly like Run, but with instrumentation
// attached: an execution trace, variable snapshots taken at assignment,
// array-assignment, if, while, for, import and catch statements (no
// snapshot is taken on function entry or exit), call stack history, per-function call counts and timings, line coverage, and
// synchronous breakpoint callbacks (spec.md §4.7).
func (e *Evaluator) RunDebug(ctx context.Context, opts DebugOptions) (*DebugResult, error) {
	e.tr = newTracer(opts)
	defer func() { e.tr = nil }()

	value, err := e.Run(ctx)
	return e.tr.result(value), err
}

// RunDebugCall is RunDebug with an explicit call target overriding the
// document's own `call:`/`main:` entry point, exactly like RunCall does
// for the plain (non-debug) evaluator. Used by lang/sandbox when a Job
// carries both Debug and CallTarget.
func (e *Evaluator) RunDebugCall(ctx context.Context, target string, args []types.Value, opts DebugOptions) (*DebugResult, error) {
	e.tr = newTracer(opts)
	defer func() { e.tr = nil }()

	value, err := e.RunCall(ctx, target, args)
	return e.tr.result(value), err
}

// traceStmt is execStmt's instrumentation hook; a no-op when e.tr is nil
// (the plain, non-debug Run path). It classifies stmt into a TraceType the
// way spec.md §4.7's testable scenarios expect: assignments and array
// assignments are their own event kinds, if/while/for produce IF_BRANCH and
// LOOP_ITER markers, try/catch's catch branch produces ERROR_CATCH, and
// import produces IMPORT; anything else is folded into the line-coverage
// and snapshot bookkeeping only, under its own statement position.
func (e *Evaluator) traceStmt(stmt ast.Stmt, sc *Scope) {
	if e.tr == nil {
		return
	}
	e.tr.funcStatExec(e.Thread.CallStack())

	switch s := stmt.(type) {
	case *ast.AssignStmt:
		e.tr.emit(TraceVariableAssign, s.Pos, map[string]string{"variable": s.Target}, e.Thread.CallStack(), sc)
	case *ast.ArrayAssignStmt:
		e.tr.emit(TraceArrayAssign, s.Pos, nil, e.Thread.CallStack(), sc)
	case *ast.IfStatement:
		e.tr.emit(TraceIfBranch, s.Pos, nil, e.Thread.CallStack(), sc)
	case *ast.WhileStatement:
		e.tr.emit(TraceLoopIter, s.Pos, nil, e.Thread.CallStack(), sc)
	case *ast.ForStatement:
		e.tr.emit(TraceLoopIter, s.Pos, nil, e.Thread.CallStack(), sc)
	case *ast.ImportStatement:
		e.tr.emit(TraceImport, s.Pos, map[string]string{"module": s.Name}, e.Thread.CallStack(), sc)
	default:
		e.tr.lineHits[stmt.Span().Line]++
	}
	e.checkBreakpoint(stmt.Span(), sc)
}

// traceCatch is TryCatchStatement's instrumentation hook, called only when
// the catch branch actually runs.
func (e *Evaluator) traceCatch(pos token.Position, sc *Scope) {
	if e.tr == nil {
		return
	}
	e.tr.emit(TraceErrorCatch, pos, nil, e.Thread.CallStack(), sc)
}

// traceCall is callFunction/callMethod's instrumentation hook, called on
// entry.
func (e *Evaluator) traceCall(label string) {
	if e.tr == nil {
		return
	}
	e.tr.onCall(label, e.Thread.CallStack())
}

// traceReturn is callFunction/callMethod's instrumentation hook, called on
// exit, closing out the timing window traceCall opened.
func (e *Evaluator) traceReturn(label string) {
	if e.tr == nil {
		return
	}
	e.tr.onReturn(label, e.Thread.CallStack())
}

func (tr *tracer) funcStatExec(callStack []string) {
	if len(callStack) == 0 {
		return
	}
	label := callStack[0]
	st, ok := tr.funcStats[label]
	if !ok {
		st = &FunctionStats{}
		tr.funcStats[label] = st
	}
	st.StmtExec++
}
