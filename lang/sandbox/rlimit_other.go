//go:build !linux

package sandbox

// applyResourceLimits is a no-op on platforms without the Linux rlimit
// numbers this package relies on (notably RLIMIT_AS and RLIMIT_NPROC,
// which darwin's unix package does not expose the same way). Per spec.md
// §4.8 point 2 and §9's explicit guidance, this falls back to wall-clock-
// only enforcement (lang/sandbox.Runner's host-side timeout still applies
// regardless of platform); the gap is documented here rather than silently
// papered over.
func applyResourceLimits(Limits) error { return nil }

const rlimitsSupported = false
