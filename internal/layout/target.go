package layout

// Target describes the addressing model of the bytecode machine.
//
// The interpreter addresses stack and heap with 64-bit offsets, so every
// reference and pointer occupies PtrSize bytes in a frame.
type Target struct {
	Name    string
	PtrSize int // bytes
	MaxSize int // largest aggregate the bytecode can address in one slot
}

// PointerSize is the width of &T, &mut T, *T and *mut T for the default target.
const PointerSize = 8

// MaxElementaryWidth bounds elementary types (numbers, bool, char).
const MaxElementaryWidth = 256

// Ferrum64 is the only supported target today.
func Ferrum64() Target {
	return Target{
		Name:    "ferrum-vm64",
		PtrSize: PointerSize,
		MaxSize: 1<<31 - 1,
	}
}
