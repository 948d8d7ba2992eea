package bytecode

import "github.com/mseida/lr1vm/internal/regs"

// Address is an operand naming a memory cell: an offset relative to one of
// the base registers (spec.md §4.7 "Addressing").
type Address struct {
	Base   regs.Base
	Offset int32
}

// Operand is a single typed instruction operand (spec.md §6 "Bytecode
// file"): exactly one of the payload fields is meaningful, selected by Tag.
// Instructions with no operand (HALT, RET, NOT, ...) carry a zero Operand
// and are encoded with no payload at all; see Instr.HasOperand.
type Operand struct {
	Tag  TypeTag
	I    int64
	F    float64
	B    bool
	S    string
	Addr Address
}

// IntOperand, RealOperand, ... build typed operands for PUSH.
func IntOperand(v int64) Operand    { return Operand{Tag: TagInt, I: v} }
func RealOperand(v float64) Operand { return Operand{Tag: TagReal, F: v} }
func BoolOperand(v bool) Operand    { return Operand{Tag: TagBool, B: v} }
func StrOperand(v string) Operand   { return Operand{Tag: TagStr, S: v} }
func AddrOperand(base regs.Base, offset int32) Operand {
	return Operand{Tag: TagAddress, Addr: Address{Base: base, Offset: offset}}
}

// Instr is a single decoded instruction: an opcode plus, for PUSH/JMP/
// JMPCND/CALL/EXTCALL, one typed operand (see HasOperand).
type Instr struct {
	Op      Op
	Operand Operand
}

// HasOperand reports whether op's encoding carries a trailing typed operand.
// DEREF, WRMEM, and RDMEM take their address (and, for WRMEM, their value)
// from the stack rather than an inline operand (spec.md §4.6 "Identifier
// resolution": "PUSH <base-register, offset> followed by DEREF"; §9 open
// question (iii) pins WRMEM's contract as "evaluate rhs, push lhs address,
// then WRMEM").
func (op Op) HasOperand() bool {
	switch op {
	case PUSH, JMP, JMPCND, CALL, EXTCALL:
		return true
	default:
		return false
	}
}

// Program is a fully assembled instruction stream, ready for
// bytecode.Save/vm.Run. EXTCALL callee names travel inline as each
// instruction's string operand.
type Program struct {
	Instrs []Instr
}
