// Package judgment defines the neutrosophic judgment value types for the
// OpenTrust Protocol.
//
// This package contains the data model only. Every other package in the
// module imports judgment; judgment imports nothing internal. This keeps
// the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - T, I, F are each in [0,1] and |T+I+F-1| <= ConservationEpsilon.
//     Violations fail construction with ValidationError, never get clamped.
//   - Provenance chains are append-only. Operations that extend a chain
//     allocate a new slice; an existing Judgment is never mutated.
//   - Provenance metadata is a closed tagged value set (string, number,
//     bool), not an open dynamic object, so canonical encoding stays
//     deterministic.
//   - All JSON tags use snake_case except the protocol-level T/I/F keys.
package judgment
