// Package profile holds the ordered, immutable table of accepted sequences and the
// role, permissions and security level each one grants.
//
// Order is significant: [Registry.Analyze] returns the first profile, in declaration
// order, whose sequence the matcher accepts.
package profile
