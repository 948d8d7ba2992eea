package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders p as the readable assembly-text view of spec.md §6
// "selected by a mode flag": one instruction per line, numbered by
// instruction index so jump/call targets (already resolved to absolute
// positions or IP-relative deltas by codegen) read directly against the
// listing.
func Disassemble(p *Program) string {
	var b strings.Builder
	for i, in := range p.Instrs {
		fmt.Fprintf(&b, "%4d: %s", i, in.Op)
		if in.Op.HasOperand() {
			fmt.Fprintf(&b, " %s", operandString(in.Operand))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func operandString(o Operand) string {
	switch o.Tag {
	case TagInt:
		return fmt.Sprintf("%d", o.I)
	case TagReal:
		return fmt.Sprintf("%g", o.F)
	case TagBool:
		return fmt.Sprintf("%t", o.B)
	case TagStr:
		return fmt.Sprintf("%q", o.S)
	case TagAddress:
		return fmt.Sprintf("%s+%d", o.Addr.Base, o.Addr.Offset)
	default:
		return "?"
	}
}
