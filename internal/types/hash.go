package types

// hasher is 64-bit FNV-1a, stable across runs and platforms.
type hasher struct {
	sum uint64
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

func newHasher() hasher {
	return hasher{sum: fnvOffset64}
}

func (h *hasher) mixByte(b byte) {
	h.sum ^= uint64(b)
	h.sum *= fnvPrime64
}

func (h *hasher) mixUint(x uint64) {
	for range 8 {
		h.mixByte(byte(x))
		x >>= 8
	}
}

func (h *hasher) mixString(s string) {
	h.mixUint(uint64(len(s)))
	for i := 0; i < len(s); i++ {
		h.mixByte(s[i])
	}
}
