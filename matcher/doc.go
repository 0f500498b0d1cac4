// Package matcher implements the fuzzy sequence comparison used to recognise a
// fingerprint sequence as one of the registered profiles.
//
// A [Matcher] is a pure predicate. [Chain] evaluates matchers in order and stops
// at the first hit; [Default] builds the standard chain:
//
//  1. [Exact]: byte equality.
//  2. [Containment]: either string contains the other.
//  3. [SlidingWindow]: some window of the target appears in the input.
//  4. [Similarity]: share of equal positions over the common prefix.
//
// This is a recogniser, not a verifier. Rules 2–4 are tolerant by construction
// and produce false positives.
package matcher
