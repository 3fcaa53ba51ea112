// Package seal generates conformance seals: SHA-256 digests over the
// canonical encoding of a fusion request.
//
// A seal commits to the input judgments, the caller's weights, and the
// versioned operator id - never to the numeric output. It proves that a
// specific operator ran on specific inputs; whether the output is the
// one that operator produces is checked separately by re-derivation
// (see the conformance package).
//
// Seals are lowercase hex, exactly 64 characters. Anything else is
// invalid input to verification, not a valid seal.
package seal
