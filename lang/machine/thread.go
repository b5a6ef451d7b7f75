package machine

import (
	"context"
	"io"
	"os"
)

// Thread carries the execution context for one evaluator run: I/O
// redirection, step/recursion limits, and a cancellation signal that stops
// a running program at its next statement boundary. Modeled directly on
// github.com/mna/nenuphar/lang/machine/thread.go's Thread (Stdout/Stderr/
// Stdin, MaxSteps, MaxCallStackDepth, one-time init against a context),
// narrowed to what a dynamically scoped tree-walking evaluator needs (no
// MaxCompareDepth/DisableRecursion — HPL has no cyclic compound-value
// comparison and no closures to guard against self-reference).
type Thread struct {
	// Name optionally identifies the thread, for diagnostics.
	Name string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of evaluated statements before the
	// evaluator aborts with a RuntimeError(errorKey="STEP_LIMIT_EXCEEDED").
	// A value <= 0 means no limit.
	MaxSteps int

	// MaxCallStackDepth bounds the number of nested function/method
	// activations (spec.md §9's recommended hard recursion depth limit,
	// surfaced as RuntimeError(errorKey="STACK_OVERFLOW")). A value <= 0
	// means the package default of 1000 applies.
	MaxCallStackDepth int

	ctx    context.Context
	cancel func()

	steps     uint64
	callStack []string

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

// DefaultMaxCallStackDepth is the recursion depth limit spec.md §9
// recommends when Thread.MaxCallStackDepth is left at zero.
const DefaultMaxCallStackDepth = 1000

func (th *Thread) init(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	th.ctx, th.cancel = context.WithCancel(ctx)

	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
	if th.Stderr != nil {
		th.stderr = th.Stderr
	} else {
		th.stderr = os.Stderr
	}
	if th.Stdin != nil {
		th.stdin = th.Stdin
	} else {
		th.stdin = os.Stdin
	}
	if th.MaxCallStackDepth <= 0 {
		th.MaxCallStackDepth = DefaultMaxCallStackDepth
	}
}

// cancelled reports whether the thread's context has been cancelled, by
// Cancel or by the context passed to the run.
func (th *Thread) cancelled() bool {
	select {
	case <-th.ctx.Done():
		return true
	default:
		return false
	}
}

func (th *Thread) pushFrame(label string) bool {
	if len(th.callStack) >= th.MaxCallStackDepth {
		return false
	}
	th.callStack = append(th.callStack, label)
	return true
}

func (th *Thread) popFrame() {
	th.callStack = th.callStack[:len(th.callStack)-1]
}

// CallStack returns the current call stack, deepest frame first, matching
// the ordering hplerror.Error.CallStack and the §4.9 formatter use.
func (th *Thread) CallStack() []string {
	out := make([]string, len(th.callStack))
	for i, frame := range th.callStack {
		out[len(out)-1-i] = frame
	}
	return out
}

// Cancel stops the thread; the next statement boundary observes it and
// aborts evaluation. The sandbox runner does not call it: it enforces its
// wall-clock limit by killing the worker process.
func (th *Thread) Cancel() {
	if th.cancel != nil {
		th.cancel()
	}
}
