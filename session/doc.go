// Package session stores the login state of a client, keyed by a digest of its
// address and user agent.
//
// # Backends
//
// [MemoryStore] keeps sessions in a mutex-guarded map and is the default.
// [RedisStore] keeps a compact binary encoding under prefix:s:clientKey so several
// replicas can share logins. Redis PX expiry only reclaims memory; the encoded
// ExpiresAt is what [Store.Verify] enforces.
//
// # Expiry
//
// Neither backend runs a sweeper. An expired entry is removed the first time
// Verify sees it and reported as [ErrSessionExpired].
//
// # What this package must NOT do
//
//   - Interpret fingerprints or match sequences.
//   - Make authorization decisions from the stored mask.
package session
