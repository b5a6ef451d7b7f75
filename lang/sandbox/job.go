package sandbox

import "time"

// Job is the JSON-serialisable instruction the host sends a worker process
// over its stdin: everything the worker needs to load and run one program
// without consulting the host again. Grounded on
// sandbox_executor.py's _execute_target argument list (file_path,
// call_target, call_args, debug_mode, input_data), adapted into a single
// value since a Go subprocess has no direct equivalent of passing Python
// objects across a multiprocessing.Queue.
type Job struct {
	Dir   string `json:"dir"`   // temporary directory owned by this worker
	Entry string `json:"entry"` // entry document filename, relative to Dir

	CallTarget string   `json:"callTarget,omitempty"`
	CallArgs   []string `json:"callArgs,omitempty"`
	Stdin      []string `json:"stdin,omitempty"` // joined by "\n" per spec.md §4.8 point 3

	Debug       bool         `json:"debug"`
	Breakpoints []Breakpoint `json:"breakpoints,omitempty"`

	Limits       Limits            `json:"limits"`
	PackagePaths []string          `json:"packagePaths,omitempty"`
	ExamplesDir  string            `json:"examplesDir,omitempty"`
	Env          map[string]string `json:"env,omitempty"` // pre-filtered allow-listed env vars
}

// Breakpoint mirrors machine.Breakpoint for wire transport (spec.md §4.7).
type Breakpoint struct {
	Line      int    `json:"line"`
	Condition string `json:"condition,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// Result is the result envelope spec.md §6 describes:
// {success, output?, error?, errorType?, line?, column?, callStack?,
// executionTime, debugInfo?}.
type Result struct {
	Success       bool          `json:"success"`
	Output        string        `json:"output,omitempty"`
	Error         string        `json:"error,omitempty"`
	ErrorType     string        `json:"errorType,omitempty"`
	Line          int           `json:"line,omitempty"`
	Column        int           `json:"column,omitempty"`
	CallStack     []string      `json:"callStack,omitempty"`
	ExecutionTime time.Duration `json:"executionTime"`
	ExitCode      int           `json:"exitCode,omitempty"` // only set for a SandboxError envelope

	Debug *DebugInfo `json:"debugInfo,omitempty"`
}

// DebugInfo is the wire form of machine.DebugResult: every Value the
// in-process debug evaluator produced is rendered to its canonical string
// here, since a worker process's result crosses a JSON boundary back to the
// host and spec.md's debug clients (an IDE variable inspector) only ever
// display a snapshot's values as text, never operate on them as live HPL
// values (deliberate adaptation, documented in DESIGN.md).
type DebugInfo struct {
	ExecutionTrace    []TraceEntry             `json:"executionTrace"`
	VariableSnapshots []VariableSnapshot       `json:"variableSnapshots"`
	FunctionStats     map[string]FunctionStats `json:"functionStats"`
	Coverage          []int                    `json:"coverage"`
	BreakpointHits    []BreakpointHit          `json:"breakpointHits,omitempty"`
	BreakpointCounts  map[int]int              `json:"breakpointCounts,omitempty"`
}

type TraceEntry struct {
	Type      string            `json:"type"`
	Line      int               `json:"line"`
	Details   map[string]string `json:"details,omitempty"`
	CallStack []string          `json:"callStack,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type VariableSnapshot struct {
	Line       int               `json:"line"`
	Locals     map[string]string `json:"locals"`
	GlobalKeys []string          `json:"globalKeys,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

type FunctionStats struct {
	Calls     int           `json:"calls"`
	StmtExec  int           `json:"stmtExec"`
	TotalTime time.Duration `json:"totalTime"`
	MinTime   time.Duration `json:"minTime"`
	MaxTime   time.Duration `json:"maxTime"`
	AvgTime   time.Duration `json:"avgTime"`
}

type BreakpointHit struct {
	Line      int               `json:"line"`
	Locals    map[string]string `json:"locals"`
	CallStack []string          `json:"callStack,omitempty"`
}
