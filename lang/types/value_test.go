package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/hpl/lang/types"
)

func TestFloatStringKeepsTrailingZero(t *testing.T) {
	assert.Equal(t, "4.0", types.Float(4).String())
	assert.Equal(t, "3.14", types.Float(3.14).String())
	assert.Equal(t, "-2.0", types.Float(-2).String())
}

func TestIntStringHasNoDecimalPoint(t *testing.T) {
	assert.Equal(t, "4", types.Int(4).String())
}

func TestBoolString(t *testing.T) {
	assert.Equal(t, "true", types.Bool(true).String())
	assert.Equal(t, "false", types.Bool(false).String())
}

func TestArrayString(t *testing.T) {
	arr := types.NewArray([]types.Value{types.Int(1), types.String("x")})
	assert.Equal(t, `[1, "x"]`, arr.String())
}

func TestClassRefMethodInheritance(t *testing.T) {
	base := &types.ClassRef{Name: "Base", Methods: map[string]*types.FunctionRef{
		"greet": {Name: "greet"},
	}}
	derived := &types.ClassRef{Name: "Derived", Parent: base, Methods: map[string]*types.FunctionRef{}}

	fn, ok := derived.LookupMethod("greet")
	assert.True(t, ok)
	assert.Equal(t, "greet", fn.Name)

	_, ok = derived.LookupMethod("missing")
	assert.False(t, ok)
}

func TestObjectInstanceAttributes(t *testing.T) {
	class := &types.ClassRef{Name: "Counter", Methods: map[string]*types.FunctionRef{}}
	obj := types.NewObjectInstance("c", class)
	obj.SetAttr("count", types.Int(0))

	v, ok := obj.GetAttr("count")
	assert.True(t, ok)
	assert.Equal(t, types.Int(0), v)

	_, ok = obj.GetAttr("missing")
	assert.False(t, ok)
}

func TestModuleRefGet(t *testing.T) {
	mod := &types.ModuleRef{
		Name:      "math",
		Constants: map[string]types.Value{"PI": types.Float(3.14159)},
		Functions: map[string]*types.FunctionRef{"sqrt": {Name: "sqrt"}},
	}
	v, ok := mod.Get("PI")
	assert.True(t, ok)
	assert.Equal(t, types.Float(3.14159), v)

	fn, ok := mod.Get("sqrt")
	assert.True(t, ok)
	assert.IsType(t, &types.FunctionRef{}, fn)
}
