package project

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// HashFile digests the bytes of path.
func HashFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first eight hex digits.
func (d Digest) Short() string { return hex.EncodeToString(d[:4]) }
