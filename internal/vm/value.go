package vm

import "github.com/mseida/lr1vm/internal/bytecode"

// Value is the VM's tagged runtime value (spec.md §3 "VM runtime value").
// bytecode.Operand already models exactly this shape — a one-byte tag plus
// a type-specific payload — since a typed PUSH literal and a runtime value
// are the same wire representation (spec.md §9 "Tagged runtime values"); Value
// is an alias rather than a parallel struct so no conversion is needed
// between "the literal a PUSH carries" and "the value living on the stack".
type Value = bytecode.Operand

func operandToValue(o bytecode.Operand) Value { return o }

func intVal(v int64) Value    { return bytecode.IntOperand(v) }
func realVal(v float64) Value { return bytecode.RealOperand(v) }
func boolVal(v bool) Value    { return bytecode.BoolOperand(v) }
func strVal(v string) Value   { return bytecode.StrOperand(v) }

// ValueString renders v the way a CLI reports a program's final result.
func ValueString(v Value) string { return toStr(v) }
