package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/ast"
	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/machine"
	"github.com/mna/hpl/lang/parser"
	"github.com/mna/hpl/lang/types"
)

// noopLoader satisfies machine.ModuleLoader for tests that never import a
// module.
type noopLoader struct{}

func (noopLoader) Load(name string) (*types.ModuleRef, error) {
	return nil, hplerror.New(hplerror.ImportError, "UNKNOWN_MODULE", "no such module %q", name)
}

func mustBlock(t *testing.T, src string) *ast.Block {
	t.Helper()
	b, err := parser.ParseBlock("test.hpl", []byte(src))
	require.NoError(t, err)
	return b
}

func emptyDoc() *ast.Document {
	return &ast.Document{
		Classes:   map[string]*ast.ClassDecl{},
		Objects:   map[string]*ast.ObjectDecl{},
		Functions: map[string]*ast.FunctionDecl{},
	}
}

func runMain(t *testing.T, src string) (types.Value, error) {
	return runMainWithStdout(t, src, nil)
}

func runMainWithStdout(t *testing.T, src string, stdout *bytes.Buffer) (types.Value, error) {
	t.Helper()
	body := mustBlock(t, src)
	doc := emptyDoc()
	doc.MainFunc = &ast.FunctionBody{Pos: body.Pos, Body: body}
	prog, err := machine.BuildProgram(doc)
	require.NoError(t, err)
	th := &machine.Thread{}
	if stdout != nil {
		th.Stdout = stdout
	}
	ev := machine.NewEvaluator(th, prog, noopLoader{})
	return ev.Run(context.Background())
}

func TestArithmeticAndScope(t *testing.T) {
	v, err := runMain(t, `x = 1 x = x + 2 return x`)
	require.NoError(t, err)
	assert.Equal(t, types.Int(3), v)
}

func TestStringConcatAndFloatPromotion(t *testing.T) {
	v, err := runMain(t, `return "a" + 1`)
	require.NoError(t, err)
	assert.Equal(t, types.String("a1"), v)

	v, err = runMain(t, `return 1 + 2.5`)
	require.NoError(t, err)
	assert.Equal(t, types.Float(3.5), v)
}

func TestEqualityIsTypeAndValue(t *testing.T) {
	v, err := runMain(t, `return 1 == 1.0`)
	require.NoError(t, err)
	assert.Equal(t, types.Bool(false), v)

	v, err = runMain(t, `return 1 == 1`)
	require.NoError(t, err)
	assert.Equal(t, types.Bool(true), v)
}

func TestDivisionByZero(t *testing.T) {
	_, err := runMain(t, `return 1 / 0`)
	require.Error(t, err)
	herr, ok := err.(*hplerror.Error)
	require.True(t, ok)
	assert.Equal(t, hplerror.ArithmeticError, herr.Kind)
}

func TestWhileAndFor(t *testing.T) {
	v, err := runMain(t, `total = 0 for (i = 0; i < 5; i++) { total = total + i } j = 0 while (j < 3) { total = total + j j = j + 1 } return total`)
	require.NoError(t, err)
	assert.Equal(t, types.Int(10+3), v)
}

func TestBreakAndContinue(t *testing.T) {
	v, err := runMain(t, `total = 0 for (i = 0; i < 10; i++) { if (i == 5) { break } if (i % 2 == 0) { continue } total = total + i } return total`)
	require.NoError(t, err)
	assert.Equal(t, types.Int(1+3), v)
}

func TestArrayIndexOutOfRange(t *testing.T) {
	_, err := runMain(t, `arr = [1, 2] return arr[5]`)
	require.Error(t, err)
	herr, ok := err.(*hplerror.Error)
	require.True(t, ok)
	assert.Equal(t, hplerror.IndexError, herr.Kind)
}

func TestArrayAssignment(t *testing.T) {
	v, err := runMain(t, `arr = [1, 2, 3] arr[1] = 99 return arr[1]`)
	require.NoError(t, err)
	assert.Equal(t, types.Int(99), v)
}

func TestTryCatchBindsMessage(t *testing.T) {
	v, err := runMain(t, `result = "unset" try { x = 1 / 0 } catch (e) { result = e } return result`)
	require.NoError(t, err)
	s, ok := v.(types.String)
	require.True(t, ok)
	assert.Contains(t, string(s), "division by zero")
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		src  string
		want types.Value
	}{
		{`return len("hello")`, types.Int(5)},
		{`return len([1, 2, 3])`, types.Int(3)},
		{`return int("42")`, types.Int(42)},
		{`return int(3.9)`, types.Int(3)},
		{`return str(42)`, types.String("42")},
		{`return type(42)`, types.String("int")},
		{`return abs(-5)`, types.Int(5)},
		{`return max(1, 9, 3)`, types.Int(9)},
		{`return min(1, 9, 3)`, types.Int(1)},
	}
	for _, tc := range cases {
		v, err := runMain(t, tc.src)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, v, tc.src)
	}
}

func TestEchoWritesToStdout(t *testing.T) {
	var out bytes.Buffer
	_, err := runMainWithStdout(t, `echo "hi"`, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out.String())
}

func TestClassInheritanceAndLazyInit(t *testing.T) {
	animalInit := mustFuncBody(t, nil, `this.sound = "..."`)
	animalSpeak := mustFuncBody(t, nil, `return this.sound`)
	dogInit := mustFuncBody(t, nil, `this.sound = "woof"`)

	doc := emptyDoc()
	doc.Classes["Animal"] = &ast.ClassDecl{Name: "Animal", Methods: map[string]*ast.FunctionBody{
		"__init__": animalInit,
		"speak":    animalSpeak,
	}}
	doc.Classes["Dog"] = &ast.ClassDecl{Name: "Dog", Parent: "Animal", Methods: map[string]*ast.FunctionBody{
		"__init__": dogInit,
	}}
	doc.Objects["rex"] = &ast.ObjectDecl{Name: "rex", ClassName: "Dog"}
	doc.Call = &ast.CallDirective{Receiver: "rex", Method: "speak"}

	prog, err := machine.BuildProgram(doc)
	require.NoError(t, err)
	ev := machine.NewEvaluator(&machine.Thread{}, prog, noopLoader{})
	v, err := ev.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.String("woof"), v)
}

func TestMethodNotFound(t *testing.T) {
	doc := emptyDoc()
	doc.Classes["Empty"] = &ast.ClassDecl{Name: "Empty", Methods: map[string]*ast.FunctionBody{}}
	doc.Objects["e"] = &ast.ObjectDecl{Name: "e", ClassName: "Empty"}
	doc.Call = &ast.CallDirective{Receiver: "e", Method: "missing"}

	prog, err := machine.BuildProgram(doc)
	require.NoError(t, err)
	ev := machine.NewEvaluator(&machine.Thread{}, prog, noopLoader{})
	_, err = ev.Run(context.Background())
	require.Error(t, err)
	herr, ok := err.(*hplerror.Error)
	require.True(t, ok)
	assert.Equal(t, hplerror.MethodNotFound, herr.Kind)
}

func mustFuncBody(t *testing.T, params []string, src string) *ast.FunctionBody {
	t.Helper()
	fb, err := parser.ParseFunctionBody("test.hpl", params, []byte(src))
	require.NoError(t, err)
	return fb
}
