package module

import "github.com/mna/hpl/lang/types"

// ListSearchPaths reports the directories l consults, in resolution order,
// when looking for a local script module (spec.md §4.6 step 3). Exposed
// read-only for an external package-manager CLI to introspect what the
// core already resolved, the boundary
// _examples/original_source/ide/services kept with hpl_runtime
// (SPEC_FULL.md's "Package manager install/list surface" note).
func (l *Loader) ListSearchPaths() []string {
	return l.searchDirs()
}

// CacheNames reports the names of every module l has already resolved and
// memoised.
func (l *Loader) CacheNames() []string {
	var names []string
	l.cache.Iter(func(k string, _ *types.ModuleRef) bool {
		names = append(names, k)
		return true
	})
	return names
}
