package permission

import (
	"errors"
	"sort"
	"sync"
)

// FullAccess is the universal permission. It always maps to the root bit.
const FullAccess = "full_access"

// Registry maps permission names to bit positions within a [Mask64].
// Bit 63 is reserved for [FullAccess].
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[string]int
	bitToName map[int]string
	frozen    bool
}

// NewRegistry creates an empty registry with [FullAccess] pre-registered.
func NewRegistry() *Registry {
	return &Registry{
		nameToBit: map[string]int{FullAccess: rootBit},
		bitToName: map[int]string{rootBit: FullAccess},
	}
}

// Register assigns the next available bit to the named permission.
// Registering an existing name returns its bit. Must be called before [Registry.Freeze].
func (r *Registry) Register(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return -1, errors.New("permission name cannot be empty")
	}
	if bit, exists := r.nameToBit[name]; exists {
		return bit, nil
	}
	if r.frozen {
		return -1, errors.New("registry frozen")
	}

	nextBit := len(r.nameToBit) - 1
	if nextBit >= rootBit {
		return -1, errors.New("permission limit exceeded (root bit reserved)")
	}

	r.nameToBit[name] = nextBit
	r.bitToName[nextBit] = name
	return nextBit, nil
}

// Bit returns the bit index for the named permission, or false if not registered.
func (r *Registry) Bit(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[name]
	return bit, ok
}

// Name returns the permission name for the given bit index, or false if unassigned.
func (r *Registry) Name(bit int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered permissions, including [FullAccess].
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}

// Compile builds a mask from permission names. Unknown names are an error.
func (r *Registry) Compile(names []string) (Mask64, error) {
	var m Mask64
	for _, name := range names {
		bit, ok := r.Bit(name)
		if !ok {
			return 0, errors.New("permission not registered: " + name)
		}
		m = m.Set(bit)
	}
	return m, nil
}

// Allows reports whether m grants the named permission. Unregistered names are
// only granted through [FullAccess].
func (r *Registry) Allows(m Mask64, name string) bool {
	if m.Root() {
		return true
	}
	bit, ok := r.Bit(name)
	if !ok {
		return false
	}
	return m.Has(bit)
}

// Names expands m into sorted permission names.
func (r *Registry) Names(m Mask64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.nameToBit))
	for bit, name := range r.bitToName {
		if m&(1<<bit) != 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
