package bytecode

import (
	"encoding/binary"
	"fmt"
)

// Op is a bytecode opcode. Only heap maintenance ops are produced by the
// front-end; the interpreter defines the rest of the instruction set.
type Op uint8

const (
	OpIncRC     Op = iota + 1 // increment a heap cell's reference count
	OpDecRC                   // decrement it, freeing the cell at zero
	OpLockMut                 // acquire the cell's exclusive-access flag
	OpUnlockMut               // release it
)

// InstrSize is the encoded size of every maintenance op:
// opcode (1) + address (8) + size (4), little-endian.
const InstrSize = 1 + 8 + 4

func (op Op) String() string {
	switch op {
	case OpIncRC:
		return "INC_RC"
	case OpDecRC:
		return "DEC_RC"
	case OpLockMut:
		return "LOCK_MUT"
	case OpUnlockMut:
		return "UNLOCK_MUT"
	default:
		return fmt.Sprintf("OP(%d)", uint8(op))
	}
}

// Valid reports whether op is a known opcode.
func (op Op) Valid() bool { return op >= OpIncRC && op <= OpUnlockMut }

// Instr is one decoded maintenance instruction on the heap cell at Addr.
type Instr struct {
	Op   Op
	Addr uint64
	Size uint32
}

func (in Instr) appendTo(buf []byte) []byte {
	buf = append(buf, byte(in.Op))
	buf = binary.LittleEndian.AppendUint64(buf, in.Addr)
	return binary.LittleEndian.AppendUint32(buf, in.Size)
}

// OpcodeError reports undecodable bytes at Offset.
type OpcodeError struct {
	Offset int
	Byte   byte
	Short  bool
}

func (e *OpcodeError) Error() string {
	if e.Short {
		return fmt.Sprintf("truncated instruction at %04d", e.Offset)
	}
	return fmt.Sprintf("illegal opcode 0x%02x at %04d", e.Byte, e.Offset)
}

func decodeAt(code []byte, i int) (Instr, error) {
	op := Op(code[i])
	if !op.Valid() {
		return Instr{}, &OpcodeError{Offset: i, Byte: code[i]}
	}
	if len(code)-i < InstrSize {
		return Instr{}, &OpcodeError{Offset: i, Short: true}
	}
	return Instr{
		Op:   op,
		Addr: binary.LittleEndian.Uint64(code[i+1:]),
		Size: binary.LittleEndian.Uint32(code[i+9:]),
	}, nil
}
