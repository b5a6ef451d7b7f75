package module_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/loader"
	"github.com/mna/hpl/lang/module"
	"github.com/mna/hpl/lang/types"
)

func newLoader(t *testing.T, cfg module.Config) *module.Loader {
	t.Helper()
	docLoader := loader.New(loader.Config{})
	return module.New(cfg, docLoader, nil)
}

func TestLoadUnknownModule(t *testing.T) {
	l := newLoader(t, module.Config{})
	_, err := l.Load("does-not-exist")
	require.Error(t, err)
	herr, ok := err.(*hplerror.Error)
	require.True(t, ok)
	assert.Equal(t, hplerror.ImportError, herr.Kind)
}

func TestMathModuleConstantsAndFunctions(t *testing.T) {
	l := newLoader(t, module.Config{})
	mod, err := l.Load("math")
	require.NoError(t, err)

	pi, ok := mod.Get("PI")
	require.True(t, ok)
	assert.InDelta(t, 3.14159, float64(pi.(types.Float)), 0.001)

	fn, ok := mod.Functions["sqrt"]
	require.True(t, ok)
	v, err := fn.Builtin([]types.Value{types.Int(16)})
	require.NoError(t, err)
	assert.Equal(t, types.Float(4), v)
}

func TestModuleIsMemoised(t *testing.T) {
	l := newLoader(t, module.Config{})
	a, err := l.Load("math")
	require.NoError(t, err)
	b, err := l.Load("math")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Contains(t, l.CacheNames(), "math")
}

func TestOsGetenvHonoursAllowList(t *testing.T) {
	t.Setenv("HPL_TEST_VAR", "secret")
	module.AllowedEnvVars = map[string]bool{}

	l := newLoader(t, module.Config{})
	mod, err := l.Load("os")
	require.NoError(t, err)
	fn := mod.Functions["getenv"]

	v, err := fn.Builtin([]types.Value{types.String("HPL_TEST_VAR")})
	require.NoError(t, err)
	assert.Equal(t, types.NullValue, v)

	module.AllowedEnvVars["HPL_TEST_VAR"] = true
	v, err = fn.Builtin([]types.Value{types.String("HPL_TEST_VAR")})
	require.NoError(t, err)
	assert.Equal(t, types.String("secret"), v)
}

func TestJSONRoundtripRejectsObjects(t *testing.T) {
	l := newLoader(t, module.Config{})
	mod, err := l.Load("json")
	require.NoError(t, err)

	encode := mod.Functions["encode"]
	decode := mod.Functions["decode"]

	v, err := encode.Builtin([]types.Value{types.NewArray([]types.Value{types.Int(1), types.String("a")})})
	require.NoError(t, err)
	assert.Equal(t, types.String(`[1,"a"]`), v)

	back, err := decode.Builtin([]types.Value{v})
	require.NoError(t, err)
	arr, ok := back.(*types.Array)
	require.True(t, ok)
	assert.Equal(t, types.Int(1), arr.Elems[0])

	_, err = decode.Builtin([]types.Value{types.String(`{"a": 1}`)})
	require.Error(t, err)
	herr, ok := err.(*hplerror.Error)
	require.True(t, ok)
	assert.Equal(t, hplerror.TypeError, herr.Kind)
}

func TestLoadLocalScriptModuleExposesClassesAndObjects(t *testing.T) {
	dir := t.TempDir()
	src := `
classes:
  Counter:
    __init__: (start) => {
      this.count = start
    }
    increment: (by) => {
      this.count = this.count + by
      return this.count
    }
objects:
  shared: Counter(10)
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.hpl"), []byte(src), 0o644))

	l := newLoader(t, module.Config{SearchPaths: []string{dir}})
	mod, err := l.Load("counter")
	require.NoError(t, err)

	sharedVal, ok := mod.Get("shared")
	require.True(t, ok)
	shared, ok := sharedVal.(*types.ObjectInstance)
	require.True(t, ok)
	count, ok := shared.GetAttr("count")
	require.True(t, ok)
	assert.Equal(t, types.Int(10), count)

	ctor, ok := mod.Functions["Counter"]
	require.True(t, ok)
	inst, err := ctor.Builtin([]types.Value{types.Int(5)})
	require.NoError(t, err)
	obj, ok := inst.(*types.ObjectInstance)
	require.True(t, ok)
	c, ok := obj.GetAttr("count")
	require.True(t, ok)
	assert.Equal(t, types.Int(5), c)
}

func TestListSearchPathsOrder(t *testing.T) {
	l := newLoader(t, module.Config{CurrentFileDir: "/a", SearchPaths: []string{"/b"}})
	dirs := l.ListSearchPaths()
	require.GreaterOrEqual(t, len(dirs), 2)
	assert.Equal(t, "/a", dirs[0])
	assert.Equal(t, "/b", dirs[len(dirs)-1])
}
