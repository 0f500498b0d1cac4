package profile

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/dnaAuth/fingerprint"
	"github.com/MrEthical07/dnaAuth/matcher"
	"github.com/MrEthical07/dnaAuth/permission"
)

const (
	// MaxRoleLength and MaxSequenceLength bound what a session can encode.
	MaxRoleLength     = 255
	MaxSequenceLength = 255

	// MinSecurityLevel is the lowest accepted security level.
	MinSecurityLevel = 1
	// MaxSecurityLevel is the highest accepted security level.
	MaxSecurityLevel = 10
)

// Profile binds a sequence to a role, a permission set and a security level.
// Profiles are values; compare them by Sequence.
type Profile struct {
	Sequence      string   `json:"sequence" yaml:"sequence"`
	Role          string   `json:"role" yaml:"role"`
	Permissions   []string `json:"permissions" yaml:"permissions"`
	SecurityLevel int      `json:"securityLevel" yaml:"security_level"`
}

type entry struct {
	profile Profile
	mask    permission.Mask64
}

// Registry is the ordered profile table. It is safe for concurrent reads and never
// changes after [NewRegistry] returns.
type Registry struct {
	entries     []entry
	permissions *permission.Registry
}

// NewRegistry validates profiles, registers their permissions in perms (which is
// frozen afterwards) and compiles a mask per profile. A nil perms gets a fresh registry.
func NewRegistry(profiles []Profile, perms *permission.Registry) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, errors.New("profile registry requires at least one profile")
	}
	if perms == nil {
		perms = permission.NewRegistry()
	}

	r := &Registry{
		entries:     make([]entry, 0, len(profiles)),
		permissions: perms,
	}

	seen := make(map[string]struct{}, len(profiles))
	for i, p := range profiles {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if _, dup := seen[p.Sequence]; dup {
			return nil, fmt.Errorf("profile %d: duplicate sequence %s", i, p.Sequence)
		}
		seen[p.Sequence] = struct{}{}
		for _, name := range p.Permissions {
			if _, err := perms.Register(name); err != nil {
				return nil, fmt.Errorf("profile %d: %w", i, err)
			}
		}
	}
	perms.Freeze()

	for i, p := range profiles {
		mask, err := perms.Compile(p.Permissions)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		r.entries = append(r.entries, entry{profile: clone(p), mask: mask})
	}

	return r, nil
}

func validate(p Profile) error {
	if !fingerprint.ValidSequence(p.Sequence) {
		return fmt.Errorf("sequence %q must be non-empty and use only A, T, C, G", p.Sequence)
	}
	if len(p.Sequence) > MaxSequenceLength {
		return fmt.Errorf("sequence exceeds %d bytes", MaxSequenceLength)
	}
	if p.Role == "" {
		return errors.New("role is required")
	}
	if len(p.Role) > MaxRoleLength {
		return fmt.Errorf("role exceeds %d bytes", MaxRoleLength)
	}
	if p.SecurityLevel < MinSecurityLevel || p.SecurityLevel > MaxSecurityLevel {
		return fmt.Errorf("security level %d out of range %d..%d", p.SecurityLevel, MinSecurityLevel, MaxSecurityLevel)
	}
	return nil
}

func clone(p Profile) Profile {
	out := p
	out.Permissions = append([]string(nil), p.Permissions...)
	return out
}

// Len returns the number of profiles.
func (r *Registry) Len() int { return len(r.entries) }

// Profiles returns a copy of the table in declaration order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, len(r.entries))
	for i, e := range r.entries {
		out[i] = clone(e.profile)
	}
	return out
}

// Analyze returns the first profile whose sequence m accepts for sequence.
func (r *Registry) Analyze(m matcher.Matcher, sequence string) (Profile, permission.Mask64, bool) {
	if m == nil {
		return Profile{}, 0, false
	}
	for _, e := range r.entries {
		if m.Match(sequence, e.profile.Sequence) {
			return clone(e.profile), e.mask, true
		}
	}
	return Profile{}, 0, false
}

// Permissions returns the permission registry the masks were compiled against.
func (r *Registry) Permissions() *permission.Registry { return r.permissions }
