package sandbox

import (
	"encoding/json"
	"io"
	"log/slog"
)

// WorkerArg is the hidden subcommand argument cmd/hpl's main() checks for
// before handing off to mainer's flag parsing: `hpl <WorkerArg>` re-execs
// the current binary as a sandbox worker rather than the ordinary CLI.
// Grounded on the corpus's self-re-exec pattern for process isolation
// (moby-moby and similar container-adjacent repos spawn `/proc/self/exe
// <hidden-subcommand>` instead of forking); Go has no fork-after-start
// primitive equivalent to Python's multiprocessing.Process that
// sandbox_executor.py relies on, so re-executing the binary under a
// private argv is this port's stand-in worker boundary.
const WorkerArg = "__hpl-sandbox-worker"

// Main is the worker process entry point: read a Job from stdin, apply its
// resource limits before touching any user code, run it, and write the
// resulting envelope as JSON to stdout. Returns the process exit code the
// caller (cmd/hpl's main) should use.
func Main(stdin io.Reader, stdout io.Writer) int {
	var job Job
	if err := json.NewDecoder(stdin).Decode(&job); err != nil {
		writeResult(stdout, &Result{Success: false, Error: "malformed sandbox job: " + err.Error(), ErrorType: "SandboxError"})
		return 1
	}

	job.Limits = job.Limits.withDefaults()

	if !rlimitsSupported {
		slog.Warn("sandbox: resource limits unsupported on this platform, falling back to wall-clock-only enforcement")
	} else if err := applyResourceLimits(job.Limits); err != nil {
		slog.Error("sandbox: failed to apply resource limits", "error", err)
		writeResult(stdout, &Result{Success: false, Error: err.Error(), ErrorType: "SandboxError"})
		return 1
	}

	res := runJob(job)
	writeResult(stdout, res)
	if !res.Success {
		return 1
	}
	return 0
}

func writeResult(w io.Writer, res *Result) {
	enc := json.NewEncoder(w)
	if err := enc.Encode(res); err != nil {
		// Nothing more useful we can do: stdout is the only transport channel
		// back to the host, and it just failed to accept the envelope.
		slog.Error("sandbox: failed to encode result envelope", "error", err)
	}
}
