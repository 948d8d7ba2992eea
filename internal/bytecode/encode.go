package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dekarrin/rezi"
	"github.com/mseida/lr1vm/internal/icterr"
	"github.com/mseida/lr1vm/internal/regs"
)

// MarshalBinary implements encoding.BinaryMarshaler over the full
// instruction stream (spec.md §6 "Bytecode file"): one opcode byte per
// instruction, followed by a descriptor byte and a type-specific payload for
// instructions that carry an operand. Numeric payloads are a fixed 8 bytes
// (int64 or float64 bits); addresses are a 4-byte signed offset plus a
// 1-byte base register id; strings are a 4-byte length prefix followed by
// their raw bytes, matching the rest of the stream's address-sized
// length fields rather than rezi's own variable-width string codec.
func (p *Program) MarshalBinary() ([]byte, error) {
	var out []byte
	for _, in := range p.Instrs {
		out = append(out, byte(in.Op))
		if !in.Op.HasOperand() {
			continue
		}
		out = append(out, byte(in.Operand.Tag))
		payload, err := encodeOperand(in.Operand)
		if err != nil {
			return nil, err
		}
		out = append(out, payload...)
	}
	return out, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (p *Program) UnmarshalBinary(data []byte) error {
	p.Instrs = nil
	pos := 0
	for pos < len(data) {
		op := Op(data[pos])
		pos++
		in := Instr{Op: op}
		if op.HasOperand() {
			if pos >= len(data) {
				return icterr.Codegenf(0, "bytecode: truncated operand descriptor at byte %d", pos)
			}
			tag := TypeTag(data[pos])
			pos++
			operand, n, err := decodeOperand(tag, data[pos:])
			if err != nil {
				return err
			}
			in.Operand = operand
			pos += n
		}
		p.Instrs = append(p.Instrs, in)
	}
	return nil
}

// Save encodes p via rezi.EncBinary, which wraps Program.MarshalBinary's
// output with rezi's own length-prefixed envelope (the same
// rezi.EncBinary(g)/rezi.DecBinary(data, g) shape used for persisting a
// BinaryMarshaler-implementing value).
func Save(p *Program) ([]byte, error) {
	return rezi.EncBinary(p)
}

// Load decodes a buffer written by Save.
func Load(data []byte) (*Program, error) {
	p := &Program{}
	if _, err := rezi.DecBinary(data, p); err != nil {
		return nil, icterr.Wrap(icterr.Codegen, 0, err, "bytecode: decode program")
	}
	return p, nil
}

func encodeOperand(o Operand) ([]byte, error) {
	switch o.Tag {
	case TagInt:
		return encode8(uint64(o.I)), nil
	case TagReal:
		return encode8(math.Float64bits(o.F)), nil
	case TagBool:
		b := byte(0)
		if o.B {
			b = 1
		}
		return append([]byte{b}, make([]byte, 7)...), nil
	case TagStr:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(len(o.S)))
		return append(buf, []byte(o.S)...), nil
	case TagAddress:
		buf := make([]byte, 5)
		binary.BigEndian.PutUint32(buf[:4], uint32(o.Addr.Offset))
		buf[4] = byte(o.Addr.Base)
		return buf, nil
	default:
		return nil, icterr.Codegenf(0, "bytecode: unknown operand tag %v", o.Tag)
	}
}

func decodeOperand(tag TypeTag, data []byte) (Operand, int, error) {
	switch tag {
	case TagInt:
		v, err := need(data, 8)
		if err != nil {
			return Operand{}, 0, err
		}
		return Operand{Tag: TagInt, I: int64(binary.BigEndian.Uint64(v))}, 8, nil
	case TagReal:
		v, err := need(data, 8)
		if err != nil {
			return Operand{}, 0, err
		}
		return Operand{Tag: TagReal, F: math.Float64frombits(binary.BigEndian.Uint64(v))}, 8, nil
	case TagBool:
		v, err := need(data, 8)
		if err != nil {
			return Operand{}, 0, err
		}
		return Operand{Tag: TagBool, B: v[0] != 0}, 8, nil
	case TagStr:
		v, err := need(data, 4)
		if err != nil {
			return Operand{}, 0, err
		}
		n := int(binary.BigEndian.Uint32(v))
		if len(data) < 4+n {
			return Operand{}, 0, icterr.Codegenf(0, "bytecode: truncated string operand, want %d bytes", n)
		}
		return Operand{Tag: TagStr, S: string(data[4 : 4+n])}, 4 + n, nil
	case TagAddress:
		v, err := need(data, 5)
		if err != nil {
			return Operand{}, 0, err
		}
		off := int32(binary.BigEndian.Uint32(v[:4]))
		return Operand{Tag: TagAddress, Addr: Address{Base: regs.Base(v[4]), Offset: off}}, 5, nil
	default:
		return Operand{}, 0, icterr.Codegenf(0, "bytecode: unknown operand tag %v", tag)
	}
}

func encode8(bits uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}

func need(data []byte, n int) ([]byte, error) {
	if len(data) < n {
		return nil, icterr.Codegenf(0, fmt.Sprintf("bytecode: truncated operand payload, want %d bytes, have %d", n, len(data)))
	}
	return data[:n], nil
}
