package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/regs"
)

func sampleProgram() *Program {
	return &Program{Instrs: []Instr{
		{Op: PUSH, Operand: IntOperand(7)},
		{Op: PUSH, Operand: RealOperand(2.5)},
		{Op: ADD},
		{Op: PUSH, Operand: StrOperand("hi")},
		{Op: PUSH, Operand: AddrOperand(regs.BP, -3)},
		{Op: JMP, Operand: AddrOperand(regs.IP, 4)},
		{Op: HALT},
	}}
}

func TestMarshalUnmarshalBinaryRoundTrip(t *testing.T) {
	assert := assert.New(t)
	p := sampleProgram()
	data, err := p.MarshalBinary()
	assert.NoError(err)

	var out Program
	assert.NoError(out.UnmarshalBinary(data))
	assert.Equal(p.Instrs, out.Instrs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)
	p := sampleProgram()
	data, err := Save(p)
	assert.NoError(err)

	loaded, err := Load(data)
	assert.NoError(err)
	assert.Equal(p.Instrs, loaded.Instrs)
}

func TestInstructionsWithNoOperandEncodeToASingleByte(t *testing.T) {
	assert := assert.New(t)
	p := &Program{Instrs: []Instr{{Op: HALT}, {Op: NOP}, {Op: ADD}}}
	data, err := p.MarshalBinary()
	assert.NoError(err)
	assert.Equal([]byte{byte(HALT), byte(NOP), byte(ADD)}, data)
}

func TestDisassembleRendersOneLinePerInstruction(t *testing.T) {
	assert := assert.New(t)
	p := sampleProgram()
	out := Disassemble(p)
	lines := strings.Count(out, "\n")
	assert.Equal(len(p.Instrs), lines)
	assert.Contains(out, "PUSH")
	assert.Contains(out, "HALT")
	assert.Contains(out, "JMP")
}
