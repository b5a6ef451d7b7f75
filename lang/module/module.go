// Package module implements the module loader (spec.md §4.6): resolving an
// `import` name to a standard-library module, a host Go package, a local
// `.hpl` script module, or a local host module file, memoising the result
// by name. Grounded on
// _examples/original_source/hpl_runtime/module_loader.py's load_module.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dolthub/swiss"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/loader"
	"github.com/mna/hpl/lang/machine"
	"github.com/mna/hpl/lang/types"
)

// Config configures a Loader's search behavior. SearchPaths is meant to be
// shared verbatim with the SearchPaths of the lang/loader.Config driving the
// same document's includes, per
// SPEC_FULL.md's Open Question resolution #2 ("the two search orders are
// unified the same way across lang/module's resolution steps").
type Config struct {
	// CurrentFileDir is the importing document's own directory, consulted
	// first (spec.md §4.6 step 3: "current source directory"). Empty when
	// the document has no on-disk location.
	CurrentFileDir string
	// SearchPaths are configured package directories, consulted last in
	// step 3's order (after the current source directory and the process's
	// CWD).
	SearchPaths []string
}

// HostPackage is a compile-time-registered Go package standing in for
// spec.md §4.6 step 2 ("a host-language package named m available in the
// runtime's package path") and, because Go has no runtime equivalent of
// Python's arbitrary `.py` file loading, also for step 4's local host
// module file: a Go program cannot dynamically load another `.go` file's
// symbols the way `importlib` loads a `.py` file at runtime, so both
// resolution steps are folded into this one registry (documented
// Non-goals-restated adaptation, see SPEC_FULL.md).
type HostPackage struct {
	Constants map[string]types.Value
	Functions map[string]types.BuiltinFunc
}

// ToModuleRef converts p into the ModuleRef the evaluator operates on.
func (p HostPackage) ToModuleRef(name string) *types.ModuleRef {
	mod := &types.ModuleRef{Name: name, Constants: p.Constants, Functions: make(map[string]*types.FunctionRef, len(p.Functions))}
	for fname, fn := range p.Functions {
		mod.Functions[fname] = &types.FunctionRef{Name: fname, Builtin: fn}
	}
	return mod
}

// Loader resolves `import` names, implementing machine.ModuleLoader.
// Grounded on module_loader.py's HPLModuleLoader: a process-wide cache
// (there `_module_cache`, here a swiss.Map guarded by a mutex since
// swiss.Map itself is not safe for concurrent use), a registry of
// standard-library modules initialized once (there `init_stdlib`), and a
// registry of host packages the embedding Go program supplies at
// construction time (there the dynamic `importlib`-based Python/host
// package loading, folded here into one static registry per HostPackage's
// doc comment).
type Loader struct {
	cfg          Config
	docLoader    *loader.Loader
	hostPackages map[string]HostPackage

	mu    sync.Mutex
	cache *swiss.Map[string, *types.ModuleRef]
}

// New returns a Loader that resolves imports per cfg. hostPackages is a map
// of host-package-registry entries available under step 2/4 (name ->
// HostPackage). docLoader parses local .hpl script modules found under
// step 3; its own Config.SearchPaths/ExamplesDir/SandboxRoot are expected
// to already reflect the same sandbox configuration as cfg.
func New(cfg Config, docLoader *loader.Loader, hostPackages map[string]HostPackage) *Loader {
	if hostPackages == nil {
		hostPackages = make(map[string]HostPackage)
	}
	return &Loader{
		cfg:          cfg,
		docLoader:    docLoader,
		hostPackages: hostPackages,
		cache:        swiss.NewMap[string, *types.ModuleRef](16),
	}
}

// Load resolves name through spec.md §4.6's four-step order, memoising the
// result. Safe for concurrent use.
func (l *Loader) Load(name string) (*types.ModuleRef, error) {
	l.mu.Lock()
	if mod, ok := l.cache.Get(name); ok {
		l.mu.Unlock()
		return mod, nil
	}
	l.mu.Unlock()

	mod, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache.Put(name, mod)
	l.mu.Unlock()
	return mod, nil
}

func (l *Loader) resolve(name string) (*types.ModuleRef, error) {
	// Step 1: registered standard library.
	if pkg, ok := stdlibModules[name]; ok {
		return pkg.ToModuleRef(name), nil
	}

	// Steps 2 and 4: the host-package registry (see HostPackage doc comment).
	if pkg, ok := l.hostPackages[name]; ok {
		return pkg.ToModuleRef(name), nil
	}

	// Step 3: a local script module, `m.hpl` or `m/index.hpl`, searched in
	// order: current source directory, CWD, configured search paths.
	if mod, err := l.loadScriptModule(name); err == nil {
		return mod, nil
	} else if _, isNotFound := err.(notFoundErr); !isNotFound {
		return nil, err
	}

	return nil, hplerror.New(hplerror.ImportError, "UNKNOWN_MODULE",
		"no module named %q (known standard modules: %s)", name, knownStdlibNames())
}

type notFoundErr struct{ name string }

func (e notFoundErr) Error() string { return fmt.Sprintf("module %q not found", e.name) }

func (l *Loader) searchDirs() []string {
	var dirs []string
	if l.cfg.CurrentFileDir != "" {
		dirs = append(dirs, l.cfg.CurrentFileDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	dirs = append(dirs, l.cfg.SearchPaths...)
	return dirs
}

// findScriptPath locates name.hpl or name/index.hpl in the search order.
func (l *Loader) findScriptPath(name string) (string, error) {
	candidates := []string{name + ".hpl", filepath.Join(name, "index.hpl")}
	for _, dir := range l.searchDirs() {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p, nil
			}
		}
	}
	return "", notFoundErr{name}
}

func knownStdlibNames() string {
	names := make([]string, 0, len(stdlibModules))
	for n := range stdlibModules {
		names = append(names, n)
	}
	return fmt.Sprint(names)
}
