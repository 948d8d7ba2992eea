// Package vm is the bytecode VM core of spec.md §4.7: a single-threaded
// stack machine with tagged runtime values, base-pointer-relative
// addressing, and a calling convention supporting external (host) calls.
//
// The source's "single contiguous memory image" holding both code and data
// (spec.md §3, §4.7) is split here into two halves: Program.Instrs (the
// instruction stream, indexed by instruction position) and VM.Mem (a slice
// of tagged Value cells, addressed by GBP/BP/SP/MEM-relative offsets). This
// mirrors the teacher's own separation of an instruction stream from a
// value stack (see internal/ictiobus/parse's stack automaton) and avoids
// re-deriving a byte-level memory allocator the target language doesn't
// need. IP is correspondingly an
// instruction index rather than a byte address, and JMP/CALL "IP-relative"
// addressing is relative delta in instruction-index units.
package vm

import (
	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/icterr"
	"github.com/mseida/lr1vm/internal/regs"
)

// Config is the VM's construction-time configuration (spec.md §4.7
// "Registers", "Memory image"): the fixed memory size and the uniform
// per-call frame reservation.
type Config struct {
	MemSize   int
	FrameSize int
}

// DefaultConfig is a generously sized configuration suitable for the sample
// imperative language's scripts and the end-to-end scenarios of spec.md §8.
func DefaultConfig() Config {
	return Config{MemSize: 4096, FrameSize: 256}
}

// VM is the fetch/execute engine. One VM owns one Program's execution; it is
// not safe for concurrent use (spec.md §5 "single-threaded and synchronous").
type VM struct {
	Program *bytecode.Program
	Cfg     Config

	Mem []Value

	IP  int
	SP  int
	BP  int
	GBP int

	Externs map[string]ExternFunc

	halted bool
}

// New returns a VM ready to Run prog.
func New(prog *bytecode.Program, cfg Config) *VM {
	m := &VM{Program: prog, Cfg: cfg}
	m.Externs = DefaultExterns()
	m.Reset()
	return m
}

// Reset zeros the memory image and places the registers at their initial
// positions (spec.md §4.7 "Memory image"): "SP = memsize − frame_size; BP =
// memsize − (padding of largest-value size); GBP = BP." Every cell here is a
// uniform Value regardless of declared type, so the "largest-value size"
// padding is exactly one cell (see internal/symtab's "one cell regardless of
// declared type" note).
func (m *VM) Reset() {
	m.Mem = make([]Value, m.Cfg.MemSize)
	m.SP = m.Cfg.MemSize - m.Cfg.FrameSize
	m.BP = m.Cfg.MemSize - 1
	m.GBP = m.BP
	m.IP = 0
	m.halted = false
}

// Halted reports whether the VM has executed HALT.
func (m *VM) Halted() bool { return m.halted }

// Top returns the value currently on top of the stack without popping it,
// for callers (e.g. a CLI) that want to report a program's final result
// after Run returns. ok is false if the stack region is empty.
func (m *VM) Top() (Value, bool) {
	if m.SP < 0 || m.SP >= len(m.Mem) || m.SP >= m.Cfg.MemSize-m.Cfg.FrameSize {
		return Value{}, false
	}
	return m.Mem[m.SP], true
}

// Run drives the fetch/execute loop to completion: either HALT is reached,
// or an error aborts execution (spec.md §7 "VM errors abort execution and
// surface the failing IP and opcode name").
func (m *VM) Run() error {
	for !m.halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// wrapIP applies spec.md §4.7 "Bounds": "IP is wrapped modulo memsize on
// overrun (so well-formed programs terminate by HALT)" — here "memsize" is
// the instruction count, since IP indexes Program.Instrs rather than Mem.
func (m *VM) wrapIP() {
	n := len(m.Program.Instrs)
	if n == 0 {
		m.halted = true
		return
	}
	m.IP = ((m.IP % n) + n) % n
}

// Step executes exactly one instruction.
func (m *VM) Step() error {
	m.wrapIP()
	if m.halted {
		return nil
	}
	in := m.Program.Instrs[m.IP]
	switch in.Op {
	case bytecode.HALT:
		m.halted = true
		return nil
	case bytecode.NOP:
		m.IP++
		return nil
	}

	var err error
	switch in.Op {
	case bytecode.PUSH:
		m.push(operandToValue(in.Operand))
		m.IP++
	case bytecode.DEREF, bytecode.RDMEM:
		err = m.execDeref()
	case bytecode.WRMEM:
		err = m.execWrmem()
	case bytecode.USUB:
		err = m.execUnaryArith()
	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD, bytecode.POW:
		err = m.execArith(in.Op)
	case bytecode.TOI, bytecode.TOF, bytecode.TOS:
		err = m.execCast(in.Op)
	case bytecode.GT, bytecode.LT, bytecode.GEQU, bytecode.LEQU, bytecode.EQU, bytecode.NEQU:
		err = m.execCompare(in.Op)
	case bytecode.AND, bytecode.OR, bytecode.XOR:
		err = m.execLogicalBinary(in.Op)
	case bytecode.NOT:
		err = m.execNot()
	case bytecode.BINAND, bytecode.BINOR, bytecode.BINXOR, bytecode.SHL, bytecode.SHR, bytecode.ROTL, bytecode.ROTR:
		err = m.execBitwiseBinary(in.Op)
	case bytecode.BINNOT:
		err = m.execBinNot()
	case bytecode.JMP:
		m.IP = m.resolveJumpTarget(in.Operand)
		return nil
	case bytecode.JMPCND:
		err = m.execJmpCnd(in.Operand)
		return err
	case bytecode.CALL:
		err = m.execCall(in.Operand)
		return err
	case bytecode.RET:
		err = m.execRet()
		return err
	case bytecode.EXTCALL:
		err = m.execExtcall(in.Operand)
	default:
		return icterr.VMf(m.IP, "unknown opcode %v", in.Op)
	}
	if err != nil {
		return err
	}
	m.IP++
	return nil
}

// resolveJumpTarget computes the absolute instruction index a JMP/JMPCND/
// CALL operand names, given that the instruction currently executing is at
// m.IP (spec.md §4.6 "All offsets are computed as (destination_stream_pos −
// patch_stream_pos − size_of_instruction)"; here there is no variable
// instruction size since IP counts instructions, so offsets are simply
// destination − origin).
func (m *VM) resolveJumpTarget(op bytecode.Operand) int {
	addr := op.Addr
	if addr.Base == regs.IP {
		return m.IP + int(addr.Offset)
	}
	return int(addr.Offset)
}

func (m *VM) push(v Value) {
	m.SP--
	if m.SP >= 0 && m.SP < len(m.Mem) {
		m.Mem[m.SP] = v
	}
}

func (m *VM) pop() (Value, error) {
	if m.SP < 0 || m.SP >= len(m.Mem) || m.SP >= m.Cfg.MemSize-m.Cfg.FrameSize {
		return Value{}, icterr.VMf(m.IP, "pop on empty or out-of-bounds stack region (sp=%d)", m.SP)
	}
	v := m.Mem[m.SP]
	m.SP++
	return v, nil
}

// resolveAddress turns an Address operand into an absolute cell index
// (spec.md §4.7 "Address pops").
func (m *VM) resolveAddress(a bytecode.Address) (int, error) {
	var abs int
	switch a.Base {
	case regs.MEM:
		abs = int(a.Offset)
	case regs.IP:
		abs = int(a.Offset) + m.IP
	case regs.SP:
		abs = int(a.Offset) + m.SP
	case regs.BP:
		abs = int(a.Offset) + m.BP
	case regs.GBP:
		abs = int(a.Offset) + m.GBP
	case regs.BPArg:
		// 1-based index from the saved-BP slot, skipping the two saved
		// registers (saved BP at BP, saved IP at BP+1); see
		// internal/codegen's argument-layout note and DESIGN.md for why
		// arguments are numbered from the callee end of the frame.
		abs = m.BP + 1 + int(a.Offset)
	default:
		return 0, icterr.VMf(m.IP, "unknown base register %v", a.Base)
	}
	if abs < 0 || abs >= len(m.Mem) {
		return 0, icterr.VMf(m.IP, "address out of bounds: %d (base %v, offset %d)", abs, a.Base, a.Offset)
	}
	return abs, nil
}

func (m *VM) execDeref() error {
	addrVal, err := m.pop()
	if err != nil {
		return err
	}
	if addrVal.Tag != bytecode.TagAddress {
		return icterr.VMf(m.IP, "DEREF/RDMEM expects an address on top of stack, got %v", addrVal.Tag)
	}
	abs, err := m.resolveAddress(addrVal.Addr)
	if err != nil {
		return err
	}
	m.push(m.Mem[abs])
	return nil
}

// execWrmem implements the assignment contract pinned by spec.md §9 open
// question (iii): "evaluate rhs, push lhs address, then WRMEM" — so the
// address is on top of the stack and the value to store is immediately
// below it.
func (m *VM) execWrmem() error {
	addrVal, err := m.pop()
	if err != nil {
		return err
	}
	if addrVal.Tag != bytecode.TagAddress {
		return icterr.VMf(m.IP, "WRMEM expects an address on top of stack, got %v", addrVal.Tag)
	}
	val, err := m.pop()
	if err != nil {
		return err
	}
	abs, err := m.resolveAddress(addrVal.Addr)
	if err != nil {
		return err
	}
	m.Mem[abs] = val
	return nil
}
