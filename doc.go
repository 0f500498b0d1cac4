// Package dnaAuth gates a school administration dashboard with "DNA" fingerprints:
// a SHA-256 digest of the client's user agent, IP address and a five-minute time
// bucket, rewritten over the alphabet A, T, C, G and fuzzily matched against a
// small table of accepted sequences.
//
// This is not authentication in any security sense. There is no secret and no
// credential: anyone who can choose their user agent can reproduce a sequence,
// and the diagnostic response headers disclose it. Replace it with a real
// credential scheme before guarding anything that matters.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// dnaAuth is the orchestration surface. It exposes [Engine], [Builder], [Config] and
// the per-request [TrustDecision]. Fingerprinting, matching, profiles, permissions and
// session storage live in their own packages and never import this one.
//
// # What this package must NOT do
//
//   - Write HTTP responses; the middleware and API packages own transport.
//   - Keep package-level mutable state; every store and registry is built per Engine.
package dnaAuth
