package dnaAuth

import (
	"time"

	"github.com/MrEthical07/dnaAuth/fingerprint"
	"github.com/MrEthical07/dnaAuth/permission"
	"github.com/MrEthical07/dnaAuth/profile"
	"github.com/MrEthical07/dnaAuth/session"
)

// Client identifies the caller the way the fingerprint does: user agent and IP.
type Client struct {
	UserAgent string
	IP        string
}

// Key returns the session store key for c.
func (c Client) Key() string {
	return session.ClientKey(c.IP, c.UserAgent)
}

// TrustDecision is computed once per request by [Engine.Analyze].
//
// Profile is what the current fingerprint matches. Session is what the client
// logged in as; the two may differ once the time window rolls over, and
// authorization always uses Session.
type TrustDecision struct {
	Fingerprint    fingerprint.Fingerprint
	Profile        *profile.Profile
	TrustScore     int
	Session        *session.Session
	SessionValid   bool
	SessionExpired bool
}

// Role returns the session role, else the matched profile role, else "none".
func (d *TrustDecision) Role() string {
	switch {
	case d == nil:
		return "none"
	case d.SessionValid && d.Session != nil:
		return d.Session.Role
	case d.Profile != nil:
		return d.Profile.Role
	default:
		return "none"
	}
}

// UserView is the login response body for a matched profile.
type UserView struct {
	Sequence      string    `json:"sequence"`
	Role          string    `json:"role"`
	Permissions   []string  `json:"permissions"`
	SecurityLevel int       `json:"securityLevel"`
	TrustScore    int       `json:"trustScore"`
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// SessionView is the status representation of a live session. The token is
// not echoed back.
type SessionView struct {
	Sequence    string    `json:"sequence"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// TrustMetrics is the freshly computed fingerprint outcome.
type TrustMetrics struct {
	Sequence   string           `json:"sequence"`
	Profile    *profile.Profile `json:"profile"`
	TrustScore int              `json:"trustScore"`
}

// StatusReport is returned by [Engine.Status].
type StatusReport struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionView `json:"user"`
	Metrics       TrustMetrics `json:"metrics"`
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	User    UserView
	Session *session.Session
}

func permissionNames(reg *permission.Registry, m permission.Mask64) []string {
	if reg == nil {
		return []string{}
	}
	return reg.Names(m)
}
