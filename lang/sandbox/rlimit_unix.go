//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// applyResourceLimits sets the current process's rlimits from lim, called
// by Main as the very first thing the worker does, before any user code is
// loaded (spec.md §4.8 point 2). Grounded on
// sandbox_executor.py's _setup_resource_limits, which sets the same five
// limits (plus stack size and disabling core dumps) via Python's
// `resource.setrlimit`; ported to golang.org/x/sys/unix.Setrlimit, gated to
// linux since RLIMIT_AS and RLIMIT_NPROC are not portable rlimit numbers
// (darwin and other platforms fall back to the no-op applyResourceLimits in
// rlimit_other.go, per §9's "otherwise fall back to wall-clock-only and
// document the gap prominently").
func applyResourceLimits(lim Limits) error {
	as := uint64(lim.MemoryMB) * 1024 * 1024
	if err := unix.Setrlimit(unix.RLIMIT_AS, &unix.Rlimit{Cur: as, Max: as}); err != nil {
		return fmt.Errorf("set memory limit: %w", err)
	}

	cpu := uint64(lim.CPUSeconds)
	if err := unix.Setrlimit(unix.RLIMIT_CPU, &unix.Rlimit{Cur: cpu, Max: cpu}); err != nil {
		return fmt.Errorf("set cpu limit: %w", err)
	}

	fsize := uint64(lim.FileSizeMB) * 1024 * 1024
	if err := unix.Setrlimit(unix.RLIMIT_FSIZE, &unix.Rlimit{Cur: fsize, Max: fsize}); err != nil {
		return fmt.Errorf("set file size limit: %w", err)
	}

	nofile := uint64(lim.MaxOpenFiles)
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &unix.Rlimit{Cur: nofile, Max: nofile}); err != nil {
		return fmt.Errorf("set open file limit: %w", err)
	}

	nproc := uint64(lim.MaxSubprocesses)
	if err := unix.Setrlimit(unix.RLIMIT_NPROC, &unix.Rlimit{Cur: nproc, Max: nproc}); err != nil {
		return fmt.Errorf("set subprocess limit: %w", err)
	}

	// Disable core dumps, matching sandbox_executor.py's final setrlimit
	// call ("安全考虑" / security consideration in the original comment).
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0}); err != nil {
		return fmt.Errorf("disable core dumps: %w", err)
	}

	return nil
}

// rlimitsSupported reports whether applyResourceLimits can do anything
// useful on this platform.
const rlimitsSupported = true
