package permission

import (
	"encoding/binary"
	"errors"
)

// EncodeMask returns the big-endian 8-byte form of m.
func EncodeMask(m Mask64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(m))
	return b
}

// DecodeMask parses the output of [EncodeMask].
func DecodeMask(data []byte) (Mask64, error) {
	if len(data) != 8 {
		return 0, errors.New("invalid mask size")
	}
	return Mask64(binary.BigEndian.Uint64(data)), nil
}
