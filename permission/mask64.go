package permission

// Mask64 is a set of up to 63 permissions plus the root bit.
type Mask64 uint64

const rootBit = 63

// Has reports whether bit is set or the root bit grants it.
func (m Mask64) Has(bit int) bool {
	if m&(1<<rootBit) != 0 {
		return true
	}
	if bit < 0 || bit >= 64 {
		return false
	}
	return m&(1<<bit) != 0
}

// Set returns m with bit set. Out-of-range bits are ignored.
func (m Mask64) Set(bit int) Mask64 {
	if bit < 0 || bit >= 64 {
		return m
	}
	return m | (1 << bit)
}

// Clear returns m with bit cleared.
func (m Mask64) Clear(bit int) Mask64 {
	if bit < 0 || bit >= 64 {
		return m
	}
	return m &^ (1 << bit)
}

// Root reports whether the universal grant is present.
func (m Mask64) Root() bool {
	return m&(1<<rootBit) != 0
}

// Raw returns the underlying bits.
func (m Mask64) Raw() uint64 {
	return uint64(m)
}
