package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/regs"
)

func runProgram(t *testing.T, instrs []bytecode.Instr) *VM {
	t.Helper()
	m := New(&bytecode.Program{Instrs: instrs}, DefaultConfig())
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return m
}

func topInt(t *testing.T, m *VM) int64 {
	t.Helper()
	v, ok := m.Top()
	if !ok {
		t.Fatal("expected a value on top of stack")
	}
	if v.Tag != bytecode.TagInt {
		t.Fatalf("expected int, got %v", v.Tag)
	}
	return v.I
}

func TestIntegerArithmetic(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(6)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(7)},
		{Op: bytecode.MUL},
		{Op: bytecode.HALT},
	})
	assert.EqualValues(42, topInt(t, m))
}

func TestIntegerDivisionByZeroErrors(t *testing.T) {
	assert := assert.New(t)
	m := New(&bytecode.Program{Instrs: []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(0)},
		{Op: bytecode.DIV},
		{Op: bytecode.HALT},
	}}, DefaultConfig())
	assert.Error(m.Run())
}

func TestUnaryNegation(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(5)},
		{Op: bytecode.USUB},
		{Op: bytecode.HALT},
	})
	assert.EqualValues(-5, topInt(t, m))
}

func TestCastIntToReal(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(3)},
		{Op: bytecode.TOF},
		{Op: bytecode.HALT},
	})
	v, ok := m.Top()
	assert.True(ok)
	assert.Equal(bytecode.TagReal, v.Tag)
	assert.Equal(3.0, v.F)
}

func TestComparisonProducesBool(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(4)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(3)},
		{Op: bytecode.GT},
		{Op: bytecode.HALT},
	})
	v, ok := m.Top()
	assert.True(ok)
	assert.Equal(bytecode.TagBool, v.Tag)
	assert.True(v.B)
}

func TestBitwiseAndShift(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(3)},
		{Op: bytecode.SHL},
		{Op: bytecode.HALT},
	})
	assert.EqualValues(8, topInt(t, m))
}

func TestWrmemThenDerefRoundTrips(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(99)},
		{Op: bytecode.PUSH, Operand: bytecode.AddrOperand(regs.GBP, -1)},
		{Op: bytecode.WRMEM},
		{Op: bytecode.PUSH, Operand: bytecode.AddrOperand(regs.GBP, -1)},
		{Op: bytecode.DEREF},
		{Op: bytecode.HALT},
	})
	assert.EqualValues(99, topInt(t, m))
}

func TestWrmemOnNonAddressTopErrors(t *testing.T) {
	assert := assert.New(t)
	m := New(&bytecode.Program{Instrs: []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(2)},
		{Op: bytecode.WRMEM},
		{Op: bytecode.HALT},
	}}, DefaultConfig())
	assert.Error(m.Run())
}

func TestJmpCndSkipsOnFalse(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.BoolOperand(false)},
		{Op: bytecode.JMPCND, Operand: bytecode.AddrOperand(regs.IP, 3)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},
		{Op: bytecode.JMP, Operand: bytecode.AddrOperand(regs.IP, 2)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(2)},
		{Op: bytecode.HALT},
	})
	assert.EqualValues(1, topInt(t, m))
}

func TestJmpCndTakesBranchOnTrue(t *testing.T) {
	assert := assert.New(t)
	m := runProgram(t, []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.BoolOperand(true)},
		{Op: bytecode.JMPCND, Operand: bytecode.AddrOperand(regs.IP, 3)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},
		{Op: bytecode.JMP, Operand: bytecode.AddrOperand(regs.IP, 2)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(2)},
		{Op: bytecode.HALT},
	})
	assert.EqualValues(2, topInt(t, m))
}

// TestCallAndReturnRoundTrip hand-assembles a tiny "callee returns its one
// argument doubled" routine, exercising CALL/RET/BP_ARG addressing without
// going through codegen.
func TestCallAndReturnRoundTrip(t *testing.T) {
	assert := assert.New(t)
	// layout:
	// 0: JMP +8       (skip callee body, land on call site)
	// 1: PUSH BP_ARG+1 (the one argument)
	// 2: DEREF
	// 3: PUSH BP_ARG+1
	// 4: DEREF
	// 5: ADD
	//   -- epilogue --
	// 6: PUSH 1 (argcount)
	// 7: RET
	// 8: PUSH 21       (argument)
	// 9: CALL -> 1
	// 10: HALT
	instrs := []bytecode.Instr{
		{Op: bytecode.JMP, Operand: bytecode.AddrOperand(regs.IP, 8)}, // 0 -> 8
		{Op: bytecode.PUSH, Operand: bytecode.AddrOperand(regs.BPArg, 1)}, // 1
		{Op: bytecode.DEREF},                                              // 2
		{Op: bytecode.PUSH, Operand: bytecode.AddrOperand(regs.BPArg, 1)}, // 3
		{Op: bytecode.DEREF},                                              // 4
		{Op: bytecode.ADD},                                                // 5
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},              // 6
		{Op: bytecode.RET},                                                // 7
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(21)},             // 8
		{Op: bytecode.CALL, Operand: bytecode.AddrOperand(regs.MEM, 1)},   // 9 -> absolute 1
		{Op: bytecode.HALT},                                               // 10
	}
	m := runProgram(t, instrs)
	assert.EqualValues(42, topInt(t, m))
}

func TestExtcallDispatchesToRegisteredFunction(t *testing.T) {
	assert := assert.New(t)
	m := New(&bytecode.Program{Instrs: []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(5)},
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(1)},
		{Op: bytecode.EXTCALL, Operand: bytecode.StrOperand("double")},
		{Op: bytecode.HALT},
	}}, DefaultConfig())
	m.Externs["double"] = func(args []Value) (Value, bool, error) {
		return intVal(args[0].I * 2), true, nil
	}
	assert.NoError(m.Run())
	assert.EqualValues(10, topInt(t, m))
}

func TestExtcallToUnknownNameErrors(t *testing.T) {
	assert := assert.New(t)
	m := New(&bytecode.Program{Instrs: []bytecode.Instr{
		{Op: bytecode.PUSH, Operand: bytecode.IntOperand(0)},
		{Op: bytecode.EXTCALL, Operand: bytecode.StrOperand("does-not-exist")},
		{Op: bytecode.HALT},
	}}, DefaultConfig())
	assert.Error(m.Run())
}

func TestWrapIPOnEmptyProgramHalts(t *testing.T) {
	assert := assert.New(t)
	m := New(&bytecode.Program{}, DefaultConfig())
	assert.NoError(m.Run())
	assert.True(m.Halted())
}

func TestResetReinitializesRegisters(t *testing.T) {
	assert := assert.New(t)
	m := New(&bytecode.Program{Instrs: []bytecode.Instr{{Op: bytecode.HALT}}}, DefaultConfig())
	m.Run()
	m.Reset()
	assert.False(m.Halted())
	assert.Equal(m.Cfg.MemSize-1, m.BP)
	assert.Equal(m.BP, m.GBP)
	assert.Equal(0, m.IP)
}

func TestValueStringFormatsEachTag(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("3", ValueString(bytecode.IntOperand(3)))
	assert.Equal("2.5", ValueString(bytecode.RealOperand(2.5)))
	assert.Equal("true", ValueString(bytecode.BoolOperand(true)))
	assert.Equal("hi", ValueString(bytecode.StrOperand("hi")))
}
