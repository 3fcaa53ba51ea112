// Package conformance verifies that a fused judgment was produced by a
// specific operator running on specific inputs.
//
// Verification is a double check. The seal stored in the judgment's
// provenance is recomputed from the claimed inputs and weights and must
// match, and the output triple is independently re-derived by running
// the claimed operator and must match within the conservation
// tolerance. A forger who fabricates a plausible seal string without
// the real algorithm cannot make the re-derivation agree.
//
// Routine verification returns a Result value: failing to verify is an
// expected outcome, not an error. Callers that treat any
// non-conformance as fatal use MustConform, which converts every
// non-verified status into a *ConformanceError.
//
// Operators are resolved through an explicitly passed fuse.Registry,
// so a verifier only ever vouches for operator ids it was built to
// know.
package conformance
