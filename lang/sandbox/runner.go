package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config configures a Runner's process-spawning and search behaviour.
// Populated from HPL_* environment variables via github.com/caarlos0/env,
// the host-configuration layer spec.md §6 describes ("the sandbox reads
// only an explicit allow-list of environment variables from the host").
type Config struct {
	// WorkerBinary is the executable re-exec'd as the worker process,
	// invoked as `WorkerBinary WorkerArg` with a Job on its stdin. Defaults
	// to the running binary itself (os.Executable, or os.Args[0] if that
	// fails) when empty.
	WorkerBinary string `env:"HPL_WORKER_BINARY"`
	// PackagePaths are configured package/include search paths, shared
	// verbatim with lang/loader.Config.SearchPaths and lang/module.Config.
	PackagePaths []string `env:"HPL_PACKAGE_PATHS" envSeparator:":"`
	// ExamplesDir is the standard examples directory, spec.md §4.1's
	// last-resort include search location.
	ExamplesDir string `env:"HPL_EXAMPLES_DIR"`
	// AllowedEnv lists the host environment variable names passed through
	// into the worker process (spec.md §6: "reads only an explicit
	// allow-list ... none by default").
	AllowedEnv []string `env:"HPL_ALLOWED_ENV" envSeparator:","`
}

func (c Config) workerBinary() string {
	if c.WorkerBinary != "" {
		return c.WorkerBinary
	}
	exe, err := os.Executable()
	if err != nil {
		return os.Args[0]
	}
	return exe
}

func (c Config) allowedEnv() map[string]string {
	out := make(map[string]string, len(c.AllowedEnv))
	for _, name := range c.AllowedEnv {
		if v, ok := os.LookupEnv(name); ok {
			out[name] = v
		}
	}
	return out
}

// Runner executes HPL programs through the sandbox protocol of spec.md
// §4.8: a fresh temporary directory per run, a re-exec'd worker process
// with resource limits applied before it loads any user code, and
// host-side wall-clock enforcement (terminate, grace period, kill).
// Grounded on sandbox_executor.py's SandboxExecutor.execute/execute_code.
type Runner struct {
	Config Config
}

// New returns a Runner configured by cfg.
func New(cfg Config) *Runner { return &Runner{Config: cfg} }

// LoadConfig populates a Config from HPL_* environment variables via
// github.com/caarlos0/env, the host-configuration layer SPEC_FULL.md's
// ambient stack section describes; an empty Config (all defaults) is
// returned unchanged when none of those variables are set.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse sandbox config: %w", err)
	}
	return cfg, nil
}

// Request bundles one Execute/Debug call's inputs (spec.md §6).
type Request struct {
	Source       string
	FilePath     string // optional, for include resolution and error display
	CallTarget   string
	CallArgs     []string
	Input        []string
	Limits       Limits
	Debug        bool
	Breakpoints  []Breakpoint
	OnBreakpoint func(BreakpointHit) // only meaningful when Debug is set; see note below
}

// Execute runs req without debug instrumentation.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	req.Debug = false
	return r.run(ctx, req)
}

// Debug runs req with debug instrumentation attached. Breakpoint hits are
// only available after the run completes (Result.Debug.BreakpointHits): a
// worker process's synchronous per-hit callback (spec.md §4.7's in-process
// contract) cannot cross the process boundary a sandboxed run interposes,
// so req.OnBreakpoint is replayed against the final BreakpointHits slice
// once the run returns rather than invoked live; callers that need a truly
// synchronous callback should use machine.Evaluator.RunDebug directly,
// unsandboxed.
func (r *Runner) Debug(ctx context.Context, req Request) (*Result, error) {
	req.Debug = true
	res, err := r.run(ctx, req)
	if err == nil && res.Debug != nil && req.OnBreakpoint != nil {
		for _, hit := range res.Debug.BreakpointHits {
			req.OnBreakpoint(hit)
		}
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, req Request) (*Result, error) {
	limits := req.Limits.withDefaults()

	dir, entry, err := r.materialize(req)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	job := Job{
		Dir:          dir,
		Entry:        entry,
		CallTarget:   req.CallTarget,
		CallArgs:     req.CallArgs,
		Stdin:        req.Input,
		Debug:        req.Debug,
		Breakpoints:  req.Breakpoints,
		Limits:       limits,
		PackagePaths: r.Config.PackagePaths,
		ExamplesDir:  r.Config.ExamplesDir,
		Env:          r.Config.allowedEnv(),
	}

	return r.spawn(ctx, job, limits)
}

// materialize writes req's source into a fresh temporary directory (the
// worker's own, per spec.md §4.8 point 1), copying any sibling files next
// to req.FilePath so local includes resolve; PackagePaths/ExamplesDir stay
// outside the temp dir as read-only roots (spec.md §6: "the filesystem
// view is restricted to the worker's temporary directory plus configured
// read-only include roots").
func (r *Runner) materialize(req Request) (dir, entry string, err error) {
	dir, err = os.MkdirTemp("", "hpl-sandbox-")
	if err != nil {
		return "", "", fmt.Errorf("create sandbox directory: %w", err)
	}

	if req.FilePath != "" {
		if err := copySiblingFiles(filepath.Dir(req.FilePath), dir); err != nil {
			os.RemoveAll(dir)
			return "", "", fmt.Errorf("copy include files: %w", err)
		}
	}

	entry = "code.hpl"
	if req.FilePath != "" {
		entry = filepath.Base(req.FilePath)
	}
	if err := os.WriteFile(filepath.Join(dir, entry), []byte(req.Source), 0o600); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("write sandbox entry file: %w", err)
	}
	return dir, entry, nil
}

func copySiblingFiles(srcDir, dstDir string) error {
	dents, err := os.ReadDir(srcDir)
	if err != nil {
		// No on-disk directory to copy from is not an error: req.FilePath may
		// point at a location that doesn't exist on disk (e.g. a virtual path
		// used only for error-message display).
		return nil
	}
	for _, dent := range dents {
		if !dent.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, dent.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dstDir, dent.Name()), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

// spawn runs job in a freshly re-exec'd worker process, enforcing
// job.Limits.WallClockSeconds with a termination-then-grace-then-kill
// sequence (spec.md §4.8 point 5), and maps the worker's outcome to a
// Result (point 6's failure mapping).
func (r *Runner) spawn(ctx context.Context, job Job, limits Limits) (*Result, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal sandbox job: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Config.workerBinary(), WorkerArg)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = envSlice(job.Env)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn sandbox worker: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	wall := time.Duration(limits.WallClockSeconds * float64(time.Second))
	timer := time.NewTimer(wall)
	defer timer.Stop()

	select {
	case err := <-done:
		return r.collect(stdout.Bytes(), stderr.String(), err)
	case <-timer.C:
		return r.killAfterTimeout(cmd, done, wall)
	}
}

func (r *Runner) killAfterTimeout(cmd *exec.Cmd, done chan error, wall time.Duration) (*Result, error) {
	slog.Warn("sandbox: wall clock exceeded, terminating worker", "pid", cmd.Process.Pid, "wallClock", wall)
	_ = cmd.Process.Signal(syscall.SIGTERM)

	grace := time.NewTimer(GracePeriod)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		slog.Warn("sandbox: worker ignored SIGTERM, killing", "pid", cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-done
	}

	return &Result{
		Success:       false,
		Error:         fmt.Sprintf("execution timed out: exceeded %s limit", wall),
		ErrorType:     "TimeoutError",
		ExecutionTime: wall,
	}, nil
}

// collect interprets the worker's exit outcome: a clean exit decodes its
// JSON result envelope from stdout; an abnormal exit is mapped per
// spec.md §4.8 point 6 (MemoryError -> MemoryLimitExceeded when the
// captured stderr carries the Go runtime's out-of-memory fatal error,
// otherwise SandboxError carrying the exit code).
func (r *Runner) collect(stdout []byte, stderr string, waitErr error) (*Result, error) {
	if waitErr == nil {
		var res Result
		if err := json.Unmarshal(stdout, &res); err != nil {
			return &Result{Success: false, Error: "sandbox worker produced no result: " + err.Error(), ErrorType: "SandboxError"}, nil
		}
		return &res, nil
	}

	var res Result
	if len(stdout) > 0 && json.Unmarshal(stdout, &res) == nil && (res.Success || res.ErrorType != "") {
		// The worker wrote a valid envelope before exiting non-zero (e.g. it
		// returned exit code 1 for a language-level failure, per worker_main's
		// Main); trust it over a generic exit-code mapping.
		return &res, nil
	}

	exitCode := -1
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	if isOOM(stderr) {
		return &Result{
			Success:   false,
			Error:     "sandbox process exceeded its memory limit",
			ErrorType: "MemoryLimitExceeded",
			ExitCode:  exitCode,
		}, nil
	}

	return &Result{
		Success:   false,
		Error:     fmt.Sprintf("sandbox process exited abnormally (exit code %d): %s", exitCode, strings.TrimSpace(stderr)),
		ErrorType: "SandboxError",
		ExitCode:  exitCode,
	}, nil
}

// isOOM recognizes the Go runtime's fatal out-of-memory message, the
// signature left behind when RLIMIT_AS starves the worker's allocator —
// Go has no catchable MemoryError the way Python does, so this string
// match is the only signal available after the fact (documented
// adaptation, see DESIGN.md).
func isOOM(stderr string) bool {
	return strings.Contains(stderr, "out of memory") || strings.Contains(stderr, "cannot allocate memory")
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
