package dnaAuth

import (
	"errors"

	"github.com/MrEthical07/dnaAuth/session"
)

var (
	// ErrAuthenticationFailed is returned by [Engine.Login] when no profile matches.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrAuthenticationRequired is returned when a gated call has no live session.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInsufficientPermission is returned when the session mask lacks a permission.
	ErrInsufficientPermission = errors.New("insufficient permission")
	// ErrSessionExpired is the session store's expiry sentinel. Callers should treat
	// it like [ErrAuthenticationRequired].
	ErrSessionExpired = session.ErrSessionExpired
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrStoreUnavailable wraps session backend failures.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrLoginThrottled is returned by [Engine.Login] once an IP has spent its
	// failure budget.
	ErrLoginThrottled = errors.New("too many failed logins")
)

// AuthenticationFailedError carries the sequence that matched no profile. The
// sequence is reproducible from request headers and is safe to disclose.
type AuthenticationFailedError struct {
	Sequence string
}

func (e *AuthenticationFailedError) Error() string {
	return "authentication failed: sequence " + e.Sequence + " not recognized"
}

// Unwrap returns [ErrAuthenticationFailed].
func (e *AuthenticationFailedError) Unwrap() error { return ErrAuthenticationFailed }

// InsufficientPermissionError names the permission the session lacked.
type InsufficientPermissionError struct {
	Permission string
}

func (e *InsufficientPermissionError) Error() string {
	return "insufficient permission: " + e.Permission + " required"
}

// Unwrap returns [ErrInsufficientPermission].
func (e *InsufficientPermissionError) Unwrap() error { return ErrInsufficientPermission }

// IsAuthenticationRequired reports whether err means the caller has to log in,
// which covers both a missing and an expired session.
func IsAuthenticationRequired(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired) || errors.Is(err, ErrSessionExpired)
}
