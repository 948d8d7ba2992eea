package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/ast"
	"github.com/mseida/lr1vm/internal/regs"
)

func TestDefineGlobalAssignsDescendingOffsets(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	a := tab.DefineGlobal("a", ast.Int)
	b := tab.DefineGlobal("b", ast.Int)
	assert.Equal(regs.GBP, a.Base)
	assert.Equal(0, a.Address)
	assert.Equal(-1, b.Address)
}

func TestDefineGlobalIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	first := tab.DefineGlobal("a", ast.Int)
	second := tab.DefineGlobal("a", ast.Real)
	assert.Equal(first, second, "redefining an existing global returns the original entry")
}

func TestDefineLocalScopesToFunction(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	tab.DefineLocal("f", "x", ast.Int)
	_, okInF := tab.Lookup("f", "x")
	_, okGlobal := tab.Lookup("", "x")
	assert.True(okInF)
	assert.False(okGlobal, "a local defined in f must not leak into global scope")
}

func TestLookupFallsBackToGlobalWhenNotLocal(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	tab.DefineGlobal("g", ast.Int)
	e, ok := tab.Lookup("somefunc", "g")
	assert.True(ok)
	assert.Equal(regs.GBP, e.Base)
}

func TestDefineArgUsesBPArgBase(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	e := tab.DefineArg("f", "x", 1)
	assert.Equal(regs.BPArg, e.Base)
	assert.Equal(1, e.Address)
}

func TestDefineFunctionRegistersArgCountAndAddress(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	tab.DefineFunction("f", 42, 2)
	e, ok := tab.Function("f")
	assert.True(ok)
	assert.Equal(42, e.Address)
	assert.Equal(2, e.ArgCount)
	assert.True(e.IsFunc)
}

func TestFunctionRejectsNonFunctionName(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	tab.DefineGlobal("notAFunc", ast.Int)
	_, ok := tab.Function("notAFunc")
	assert.False(ok)
}

func TestPatchFunctionAddressUpdatesEntry(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	tab.DefineFunction("f", 10, 0)
	assert.NoError(tab.PatchFunctionAddress("f", 20))
	e, ok := tab.Function("f")
	assert.True(ok)
	assert.Equal(20, e.Address)
}

func TestPatchFunctionAddressOnUndefinedErrors(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	assert.Error(tab.PatchFunctionAddress("nope", 0))
}

func TestDeclareExternalMarksIsExternal(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	assert.False(tab.IsExternal("print"))
	tab.DeclareExternal("print")
	assert.True(tab.IsExternal("print"))
}
