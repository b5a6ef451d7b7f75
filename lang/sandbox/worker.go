package sandbox

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/loader"
	"github.com/mna/hpl/lang/machine"
	"github.com/mna/hpl/lang/module"
	"github.com/mna/hpl/lang/types"
)

// runJob executes job in the current process (the worker), returning the
// result envelope. Callers (worker_main.go's Main) are expected to have
// already applied resource limits before runJob is reached, per spec.md §4.8
// point 2 ("apply resource limits before loading user code").
func runJob(job Job) *Result {
	start := time.Now()
	module.MaxFileSizeBytes = int64(job.Limits.FileSizeMB) * 1024 * 1024

	docCfg := loader.Config{SearchPaths: job.PackagePaths, ExamplesDir: job.ExamplesDir, SandboxRoot: job.Dir}
	docLoader := loader.New(docCfg)

	entryPath := filepath.Join(job.Dir, job.Entry)
	doc, _, err := docLoader.LoadFile(entryPath)
	if err != nil {
		return errResult(err, time.Since(start))
	}

	prog, err := machine.BuildProgram(doc)
	if err != nil {
		return errResult(hplerror.New(hplerror.ImportError, "PROGRAM_LINK_ERROR", "%s", err), time.Since(start))
	}

	modCfg := module.Config{CurrentFileDir: job.Dir, SearchPaths: job.PackagePaths}
	modLoader := module.New(modCfg, docLoader, nil)

	var outBuf, errBuf bytes.Buffer
	th := &machine.Thread{
		Name:   "sandbox",
		Stdout: &outBuf,
		Stderr: &errBuf,
		Stdin:  strings.NewReader(strings.Join(job.Stdin, "\n")),
	}
	ev := machine.NewEvaluator(th, prog, modLoader)

	ctx := context.Background()
	if job.Debug {
		opts := machine.DebugOptions{Breakpoints: toMachineBreakpoints(job.Breakpoints)}
		var dbg *machine.DebugResult
		if job.CallTarget != "" {
			dbg, err = ev.RunDebugCall(ctx, job.CallTarget, stringArgs(job.CallArgs), opts)
		} else {
			dbg, err = ev.RunDebug(ctx, opts)
		}
		elapsed := time.Since(start)
		res := resultFrom(err, outBuf.String(), elapsed)
		if dbg != nil {
			res.Debug = toDebugInfo(dbg)
		}
		return res
	}

	_, err = runCall(ev, ctx, job)
	res := resultFrom(err, outBuf.String(), time.Since(start))
	if !res.Success && errBuf.Len() > 0 {
		res.Error = res.Error + "\n" + errBuf.String()
	}
	return res
}

// runCall runs job's call target if set, otherwise the document's default
// entry point (spec.md §6: "call" is "an optional directive"; a Job's
// CallTarget overrides whatever the document itself declares).
func runCall(ev *machine.Evaluator, ctx context.Context, job Job) (types.Value, error) {
	if job.CallTarget == "" {
		return ev.Run(ctx)
	}
	return ev.RunCall(ctx, job.CallTarget, stringArgs(job.CallArgs))
}

func stringArgs(args []string) []types.Value {
	out := make([]types.Value, len(args))
	for i, a := range args {
		out[i] = types.String(a)
	}
	return out
}

func resultFrom(err error, output string, elapsed time.Duration) *Result {
	if err == nil {
		return &Result{Success: true, Output: output, ExecutionTime: elapsed}
	}
	r := errResult(err, elapsed)
	r.Output = output
	return r
}

func errResult(err error, elapsed time.Duration) *Result {
	r := &Result{Success: false, ExecutionTime: elapsed}
	if herr, ok := err.(*hplerror.Error); ok {
		r.Error = herr.Message
		r.ErrorType = string(herr.Kind)
		r.Line = herr.Pos.Line
		r.Column = herr.Pos.Column
		r.CallStack = herr.CallStack
		return r
	}
	if list, ok := err.(hplerror.List); ok && len(list) > 0 {
		return errResult(list[0], elapsed)
	}
	r.Error = err.Error()
	r.ErrorType = "RuntimeError"
	return r
}

func toMachineBreakpoints(bps []Breakpoint) []machine.Breakpoint {
	out := make([]machine.Breakpoint, len(bps))
	for i, b := range bps {
		out[i] = machine.Breakpoint{Line: b.Line, Condition: b.Condition, Enabled: b.Enabled}
	}
	return out
}

func toDebugInfo(dbg *machine.DebugResult) *DebugInfo {
	di := &DebugInfo{
		FunctionStats:    make(map[string]FunctionStats, len(dbg.FunctionStats)),
		BreakpointCounts: dbg.BreakpointCounts,
	}
	for _, ev := range dbg.Trace {
		di.ExecutionTrace = append(di.ExecutionTrace, TraceEntry{
			Type: string(ev.Type), Line: ev.Pos.Line, Details: ev.Details,
			CallStack: ev.CallStack, Timestamp: ev.Timestamp,
		})
	}
	for _, sn := range dbg.Snapshots {
		di.VariableSnapshots = append(di.VariableSnapshots, VariableSnapshot{
			Line: sn.Pos.Line, Locals: renderLocals(sn.Locals), GlobalKeys: sn.GlobalKeys, Timestamp: sn.Timestamp,
		})
	}
	for label, st := range dbg.FunctionStats {
		di.FunctionStats[label] = FunctionStats{
			Calls: st.Calls, StmtExec: st.StmtExec,
			TotalTime: st.TotalTime, MinTime: st.MinTime, MaxTime: st.MaxTime, AvgTime: st.AvgTime,
		}
	}
	lines := make([]int, 0, len(dbg.LineCoverage))
	for line := range dbg.LineCoverage {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	di.Coverage = lines
	for _, hit := range dbg.BreakpointHits {
		di.BreakpointHits = append(di.BreakpointHits, BreakpointHit{
			Line: hit.Pos.Line, Locals: renderLocals(hit.Locals), CallStack: hit.CallStack,
		})
	}
	return di
}

func renderLocals(locals map[string]types.Value) map[string]string {
	out := make(map[string]string, len(locals))
	for k, v := range locals {
		out[k] = v.String()
	}
	return out
}
