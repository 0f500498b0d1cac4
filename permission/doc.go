// Package permission maps permission names to bits of a 64-bit mask and evaluates
// grants for dnaAuth profiles and sessions.
//
// # Root grant
//
// The highest bit is reserved for [FullAccess]. A mask carrying it satisfies every
// permission check, registered or not.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. It provides the
// codec (EncodeMask/DecodeMask) used by the session binary encoder.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import dnaAuth, profile, or session.
//   - Reassign bits after [Registry.Freeze].
package permission
