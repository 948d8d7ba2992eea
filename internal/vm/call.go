package vm

import (
	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/icterr"
)

// execJmpCnd implements JMPCND: pop a bool; if true, jump to the embedded
// target, else fall through (spec.md §4.6 "Conditionals": "Emit condition,
// NOT, push a relative IP address (placeholder), JMPCND" — codegen folds
// the placeholder push into JMPCND's own operand rather than a separate
// PUSH).
func (m *VM) execJmpCnd(op bytecode.Operand) error {
	v, err := m.pop()
	if err != nil {
		return err
	}
	if v.Tag != bytecode.TagBool {
		return icterr.VMf(m.IP, "JMPCND on non-bool condition %v", v.Tag)
	}
	if v.B {
		m.IP = m.resolveJumpTarget(op)
	} else {
		m.IP++
	}
	return nil
}

// execCall implements CALL (spec.md §4.7 "CALL"): push return IP, push old
// BP, set BP ← SP, SP ← SP − frame_size, IP ← callee. The callee address is
// carried as CALL's own operand (spec.md §4.6 "Calls" emits "an IP-relative
// address push then CALL"; folded into one instruction here), rather than
// a separate stack pop.
func (m *VM) execCall(op bytecode.Operand) error {
	target := m.resolveJumpTarget(op)
	returnIP := m.IP + 1

	m.push(intVal(int64(returnIP)))
	m.push(intVal(int64(m.BP)))
	m.BP = m.SP
	m.SP -= m.Cfg.FrameSize
	if m.SP < 0 {
		return icterr.VMf(m.IP, "call stack overflow: frame would underflow memory image")
	}
	m.IP = target
	return nil
}

// execRet implements RET (spec.md §4.7 "RET"): pop the declared arg count,
// recover an optional return value left above the locals region, restore
// SP/BP/IP, and discard the arguments that were pushed before the call.
func (m *VM) execRet() error {
	argCountVal, err := m.pop()
	if err != nil {
		return err
	}
	argCount := int(argCountVal.I)

	var retVal Value
	haveRet := false
	if m.SP+m.Cfg.FrameSize < m.BP {
		retVal, err = m.pop()
		if err != nil {
			return err
		}
		haveRet = true
	}

	m.SP = m.BP
	oldBP, err := m.pop()
	if err != nil {
		return err
	}
	savedIP, err := m.pop()
	if err != nil {
		return err
	}
	for i := 0; i < argCount; i++ {
		if _, err := m.pop(); err != nil {
			return err
		}
	}

	m.BP = int(oldBP.I)
	m.IP = int(savedIP.I)
	if haveRet {
		m.push(retVal)
	}
	return nil
}

// ExternFunc is a host function reachable via EXTCALL. args are supplied in
// call order (arg 1 first); the returned Value, if any, is pushed back onto
// the stack (spec.md §4.7 "EXTCALL").
type ExternFunc func(args []Value) (Value, bool, error)

// execExtcall implements EXTCALL (spec.md §4.7 "EXTCALL"): dispatch on the
// callee name carried as the instruction's operand (spec.md §4.6 "Calls"
// emits "a string push of the callee name then EXTCALL", folded here into a
// single instruction). Arguments were pushed by the caller in
// source order and are "consumed in reverse order after coercion" — i.e.
// popped last-argument-first, which recovers source order in the args slice
// passed to fn.
func (m *VM) execExtcall(op bytecode.Operand) error {
	name := op.S
	fn, ok := m.Externs[name]
	if !ok {
		return icterr.VMf(m.IP, "unknown external callee %q", name)
	}

	argc, err := m.pop()
	if err != nil {
		return err
	}
	n := int(argc.I)
	args := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	result, hasResult, err := fn(args)
	if err != nil {
		return icterr.Wrap(icterr.VM, 0, err, "external call %q failed (at ip=%d)", name, m.IP)
	}
	if hasResult {
		m.push(result)
	}
	return nil
}
