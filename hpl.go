// Package hpl exposes the three core APIs spec.md §6 names as the only
// surface external collaborators (the HTTP/IDE layer, the syntax linter,
// the package-manager CLI, the editor integration) consume: Validate,
// Execute, and Debug. It wires together lang/loader, lang/machine,
// lang/module and lang/sandbox the same way
// _examples/original_source/ide/services/hpl_engine.py's HPLEngine wires
// the equivalent Python modules behind load_file/execute/debug.
package hpl

import (
	"context"
	"sync"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/loader"
	"github.com/mna/hpl/lang/machine"
	"github.com/mna/hpl/lang/sandbox"
)

// Severity classifies a Diagnostic (spec.md §6's Validate return shape).
type Severity string

const SeverityError Severity = "error"

// Diagnostic is one entry of Validate's result list.
type Diagnostic struct {
	Line     int
	Column   int
	Severity Severity
	Message  string
	ErrorKey string
}

// Options bundles one Execute/Debug call's inputs (spec.md §6:
// "Execute(source, {input?, callTarget?, callArgs?, limits?})").
type Options struct {
	// Input is fed to the program's stdin, joined by "\n" (spec.md §4.8
	// point 3: "stdin ... (list -> joined by \n)").
	Input []string
	// CallTarget overrides the document's own `call:`/`main:` entry point,
	// e.g. "funcName" or "object.method".
	CallTarget string
	CallArgs   []string
	// FilePath, if set, is the source's on-disk location, consulted for
	// include resolution and for the source window an error formats
	// against (spec.md §4.1's "current file's directory").
	FilePath string
	Limits   Limits

	// Breakpoints and OnBreakpoint configure a Debug call (spec.md §4.7);
	// unused by Execute.
	Breakpoints  []Breakpoint
	OnBreakpoint func(BreakpointHit)
}

// Limits, Result, DebugInfo and the trace/snapshot/stats/breakpoint types
// are the sandbox package's wire types, re-exported here since they are
// exactly the shapes Execute/Debug return (spec.md §6's result envelope
// and debugInfo).
type (
	Limits           = sandbox.Limits
	Result           = sandbox.Result
	DebugInfo        = sandbox.DebugInfo
	TraceEntry       = sandbox.TraceEntry
	VariableSnapshot = sandbox.VariableSnapshot
	FunctionStats    = sandbox.FunctionStats
	Breakpoint       = sandbox.Breakpoint
	BreakpointHit    = sandbox.BreakpointHit
)

var (
	defaultRunnerOnce sync.Once
	defaultRunner     *sandbox.Runner
)

func runner() *sandbox.Runner {
	defaultRunnerOnce.Do(func() {
		cfg, err := sandbox.LoadConfig()
		if err != nil {
			cfg = sandbox.Config{}
		}
		defaultRunner = sandbox.New(cfg)
	})
	return defaultRunner
}

// Validate loads and links source without running it, returning every
// diagnostic the loader/parser/linker produced (spec.md §4.9's "Parser
// error recovery" note: Validate is the one API allowed to surface more
// than one finding per compile). A nil, empty slice means source is valid.
func Validate(source string) []Diagnostic {
	ldr := loader.New(loader.Config{})
	doc, _, err := ldr.LoadSource("source.hpl", "", []byte(source))
	if err != nil {
		return diagnosticsFromError(err)
	}
	if _, err := machine.BuildProgram(doc); err != nil {
		return diagnosticsFromError(err)
	}
	return nil
}

func diagnosticsFromError(err error) []Diagnostic {
	if list, ok := err.(hplerror.List); ok {
		out := make([]Diagnostic, len(list))
		for i, e := range list {
			out[i] = diagnosticFromHPLError(e)
		}
		return out
	}
	if herr, ok := err.(*hplerror.Error); ok {
		return []Diagnostic{diagnosticFromHPLError(herr)}
	}
	return []Diagnostic{{Severity: SeverityError, Message: err.Error()}}
}

func diagnosticFromHPLError(e *hplerror.Error) Diagnostic {
	return Diagnostic{
		Line:     e.Pos.Line,
		Column:   e.Pos.Column,
		Severity: SeverityError,
		Message:  e.Message,
		ErrorKey: e.ErrorKey,
	}
}

// Execute runs source to completion inside the sandbox, without debug
// instrumentation (spec.md §6: "Execute(source, ...) -> {success, output,
// error?, errorType?, line?, column?, executionTime}").
func Execute(source string, opts Options) (*Result, error) {
	return runner().Execute(context.Background(), toRequest(source, opts))
}

// Debug runs source to completion inside the sandbox with debug
// instrumentation attached, returning Execute's result envelope plus
// debugInfo (spec.md §6).
func Debug(source string, opts Options) (*Result, error) {
	return runner().Debug(context.Background(), toRequest(source, opts))
}

func toRequest(source string, opts Options) sandbox.Request {
	return sandbox.Request{
		Source:       source,
		FilePath:     opts.FilePath,
		CallTarget:   opts.CallTarget,
		CallArgs:     opts.CallArgs,
		Input:        opts.Input,
		Limits:       opts.Limits,
		Breakpoints:  opts.Breakpoints,
		OnBreakpoint: opts.OnBreakpoint,
	}
}
