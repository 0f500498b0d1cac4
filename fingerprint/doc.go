// Package fingerprint derives the time-windowed request fingerprint used by dnaAuth:
// a SHA-256 digest of user-agent, client IP and a coarse time bucket, rendered as
// lowercase hex and reduced to a nucleotide sequence over {A,T,C,G}.
//
// # Determinism
//
// The same (user-agent, IP) pair produces the same hash and sequence for every
// timestamp inside one window. Anyone who knows both inputs can reproduce the
// sequence; it is an identifier, not a secret.
//
// # Architecture boundaries
//
// This package is pure computation. It does NOT match sequences, look up profiles,
// or read HTTP requests; callers pass the header values in.
//
// # What this package must NOT do
//
//   - Perform I/O or keep state between calls.
//   - Import dnaAuth, matcher, profile, or session.
package fingerprint
