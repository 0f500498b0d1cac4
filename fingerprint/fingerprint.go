package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWindow is the width of one time bucket.
	DefaultWindow = 5 * time.Minute
	// DefaultLength is the number of nucleotides taken from the hash.
	DefaultLength = 24
)

// ErrInvalidHash is returned when a hash contains a non-hex character.
var ErrInvalidHash = errors.New("fingerprint: invalid hex hash")

// nucleotides maps each hex nibble to a letter. The reduction is 4-to-1 on purpose:
// distinct hashes may share a sequence.
var nucleotides = [16]byte{
	'A', 'T', 'C', 'G',
	'A', 'T', 'C', 'G',
	'A', 'T', 'C', 'G',
	'A', 'T', 'C', 'G',
}

// Fingerprint is the derived value for one authentication attempt.
type Fingerprint struct {
	RawHash  string
	Sequence string
}

// Generator computes fingerprints with a fixed window and sequence length.
// The zero value is not usable; construct with [New].
type Generator struct {
	window time.Duration
	length int
}

// New returns a Generator. Non-positive arguments fall back to [DefaultWindow]
// and [DefaultLength].
func New(window time.Duration, length int) *Generator {
	if window <= 0 {
		window = DefaultWindow
	}
	if length <= 0 {
		length = DefaultLength
	}
	if length > sha256.Size*2 {
		length = sha256.Size * 2
	}
	return &Generator{window: window, length: length}
}

// Window returns the configured bucket width.
func (g *Generator) Window() time.Duration { return g.window }

// Length returns the configured sequence length.
func (g *Generator) Length() int { return g.length }

// Bucket returns floor(t / window) in milliseconds, the time component of the digest input.
func (g *Generator) Bucket(t time.Time) int64 {
	ms := t.UnixMilli()
	w := g.window.Milliseconds()
	b := ms / w
	if ms < 0 && ms%w != 0 {
		b--
	}
	return b
}

// GenerateHash returns the lowercase hex SHA-256 of "userAgent:ip:bucket".
func (g *Generator) GenerateHash(userAgent, ip string, t time.Time) string {
	var b strings.Builder
	b.Grow(len(userAgent) + len(ip) + 24)
	b.WriteString(userAgent)
	b.WriteByte(':')
	b.WriteString(ip)
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(g.Bucket(t), 10))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// HashToSequence maps the first Length hex characters of hash to nucleotides.
// A shorter hash yields a shorter sequence.
func (g *Generator) HashToSequence(hash string) (string, error) {
	return HashToSequence(hash, g.length)
}

// Compute runs both steps for one request.
func (g *Generator) Compute(userAgent, ip string, t time.Time) Fingerprint {
	hash := g.GenerateHash(userAgent, ip, t)
	// GenerateHash always emits valid lowercase hex.
	seq, _ := g.HashToSequence(hash)
	return Fingerprint{RawHash: hash, Sequence: seq}
}

// HashToSequence is the package-level form of [Generator.HashToSequence].
// Upper-case hex digits are accepted.
func HashToSequence(hash string, length int) (string, error) {
	if length > len(hash) {
		length = len(hash)
	}
	if length < 0 {
		length = 0
	}

	out := make([]byte, length)
	for i := 0; i < length; i++ {
		n, ok := nibble(hash[i])
		if !ok {
			return "", ErrInvalidHash
		}
		out[i] = nucleotides[n]
	}
	return string(out), nil
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// ValidSequence reports whether s is non-empty and uses only A, T, C and G.
func ValidSequence(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'T', 'C', 'G':
		default:
			return false
		}
	}
	return true
}
