package machine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/machine"
	"github.com/mna/hpl/lang/types"
)

func runMainDebug(t *testing.T, src string, opts machine.DebugOptions) (*machine.DebugResult, error) {
	t.Helper()
	body := mustBlock(t, src)
	doc := emptyDoc()
	doc.MainFunc = &ast.FunctionBody{Pos: body.Pos, Body: body}
	prog, err := machine.BuildProgram(doc)
	require.NoError(t, err)
	ev := machine.NewEvaluator(&machine.Thread{}, prog, noopLoader{})
	return ev.RunDebug(context.Background(), opts)
}

func TestDebugTraceForLoopAssignments(t *testing.T) {
	// i = i + 1 (rather than i++) so every increment is its own
	// VARIABLE_ASSIGN trace entry: init (i=0) plus one per completed pass
	// (i=1, i=2, i=3), the last of which fails the condition and exits.
	res, err := runMainDebug(t, `for (i = 0; i < 3; i = i + 1) { echo i }`, machine.DebugOptions{})
	require.NoError(t, err)

	var assigns []machine.TraceEvent
	for _, ev := range res.Trace {
		if ev.Type == machine.TraceVariableAssign && ev.Details["variable"] == "i" {
			assigns = append(assigns, ev)
		}
	}
	assert.Equal(t, 4, len(assigns)) // i=0, i=1, i=2, i=3

	loopIters := 0
	for _, ev := range res.Trace {
		if ev.Type == machine.TraceLoopIter {
			loopIters++
		}
	}
	assert.Equal(t, 1, loopIters) // one LOOP_ITER marker for the ForStatement itself, not per pass
	assert.NotEmpty(t, res.LineCoverage)
}

func TestDebugFunctionStatsTiming(t *testing.T) {
	res, err := runMainDebug(t, `return 1 + 1`, machine.DebugOptions{})
	require.NoError(t, err)
	st, ok := res.FunctionStats["main()"]
	require.True(t, ok)
	assert.Equal(t, 1, st.Calls)
	assert.GreaterOrEqual(t, st.TotalTime.Nanoseconds(), int64(0))
}

func TestDebugBreakpointUnconditional(t *testing.T) {
	var hits []machine.BreakpointHit
	src := "x = 1\nx = 2\nreturn x"
	_, err := runMainDebug(t, src, machine.DebugOptions{
		Breakpoints: []machine.Breakpoint{{Line: 2, Enabled: true}},
		OnBreakpoint: func(h machine.BreakpointHit) {
			hits = append(hits, h)
		},
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Pos.Line)
}

func TestDebugBreakpointCondition(t *testing.T) {
	src := "for (i = 0; i < 5; i++) {\n  x = i\n}\nreturn x"
	res, err := runMainDebug(t, src, machine.DebugOptions{
		Breakpoints: []machine.Breakpoint{{Line: 2, Condition: "i == 3", Enabled: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.BreakpointCounts[2])
}

func TestDebugLineCoverage(t *testing.T) {
	res, err := runMainDebug(t, "x = 1\ny = 2\nreturn x + y", machine.DebugOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.Int(3), res.Value)
	assert.NotEmpty(t, res.LineCoverage)
}

