package session

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/MrEthical07/dnaAuth/permission"
)

// DefaultTTL is the session lifetime used when a store is built with ttl <= 0.
const DefaultTTL = 24 * time.Hour

// Session is the login state of one client.
type Session struct {
	ClientKey string
	Sequence  string
	Role      string
	Mask      permission.Mask64
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Grant is what a login hands to [Store.Issue]: the matched profile's sequence,
// role and compiled mask.
type Grant struct {
	Sequence string
	Role     string
	Mask     permission.Mask64
}

// Expired reports whether now is past s.ExpiresAt. A session is still valid at
// exactly ExpiresAt.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ClientKey derives the store key for a client: hex SHA-256 of ip + "|" + ua.
func ClientKey(ip, ua string) string {
	sum := sha256.Sum256([]byte(ip + "|" + ua))
	return hex.EncodeToString(sum[:])
}
