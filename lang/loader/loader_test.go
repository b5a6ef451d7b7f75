package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/loader"
)

func TestLoadSourceMainOnly(t *testing.T) {
	src := `
main: (args) => {
  echo "hello"
  return 0
}
`
	l := loader.New(loader.Config{})
	doc, _, err := l.LoadSource("test.hpl", "", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, doc.MainFunc)
	require.Len(t, doc.MainFunc.Params, 1)
	assert.Equal(t, "args", doc.MainFunc.Params[0].Name)
	require.Len(t, doc.MainFunc.Body.Stmts, 2)
}

func TestLoadSourceClassesAndObjects(t *testing.T) {
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
  c: Counter(0)
call: c.increment(1)
`
	l := loader.New(loader.Config{})
	doc, _, err := l.LoadSource("test.hpl", "", []byte(src))
	require.NoError(t, err)

	require.Contains(t, doc.Classes, "Counter")
	cls := doc.Classes["Counter"]
	require.Contains(t, cls.Methods, "__init__")
	require.Contains(t, cls.Methods, "increment")
	assert.Equal(t, "start", cls.Methods["__init__"].Params[0].Name)

	require.Contains(t, doc.Objects, "c")
	assert.Equal(t, "Counter", doc.Objects["c"].ClassName)
	require.Len(t, doc.Objects["c"].Args, 1)

	require.NotNil(t, doc.Call)
	assert.Equal(t, "c", doc.Call.Receiver)
	assert.Equal(t, "increment", doc.Call.Method)
	require.Len(t, doc.Call.Args, 1)
}

func TestLoadSourceImports(t *testing.T) {
	src := `
imports:
  - math
  - json: j
main: (args) => {
  return 0
}
`
	l := loader.New(loader.Config{})
	doc, _, err := l.LoadSource("test.hpl", "", []byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Imports, 2)
	assert.Equal(t, "math", doc.Imports[0].Name)
	assert.Equal(t, "json", doc.Imports[1].Name)
	assert.Equal(t, "j", doc.Imports[1].Alias)
}

func TestLoadSourceMissingEntryPoint(t *testing.T) {
	src := `
classes:
  Foo:
    bar: (x) => { return x }
`
	l := loader.New(loader.Config{})
	_, _, err := l.LoadSource("test.hpl", "", []byte(src))
	require.Error(t, err)
}

func TestLoadSourceUnterminatedFunctionBody(t *testing.T) {
	src := `
main: (args) => {
  echo "hello"
`
	l := loader.New(loader.Config{})
	_, _, err := l.LoadSource("test.hpl", "", []byte(src))
	require.Error(t, err)
}

func TestBuildOutline(t *testing.T) {
	src := `
classes:
  Counter:
    increment: (by) => {
      return by
    }
objects:
  c: Counter()
main: (args) => {
  return 0
}
`
	l := loader.New(loader.Config{})
	doc, _, err := l.LoadSource("test.hpl", "", []byte(src))
	require.NoError(t, err)

	outline := loader.BuildOutline(doc)
	require.Len(t, outline.Classes, 1)
	assert.Equal(t, "Counter", outline.Classes[0].Name)
	require.Len(t, outline.Classes[0].Methods, 1)
	assert.Equal(t, "increment", outline.Classes[0].Methods[0].Name)

	require.Len(t, outline.Objects, 1)
	assert.Equal(t, "Counter", outline.Objects[0].Class)

	require.Len(t, outline.Functions, 1)
	assert.True(t, outline.Functions[0].IsMain)
}
