package conformance

// Status classifies the outcome of a verification.
type Status string

const (
	// StatusVerified means the seal matched and the re-derived output
	// agreed with the claimed output within tolerance.
	StatusVerified Status = "VERIFIED"

	// StatusMissingSeal means no provenance entry carries a
	// conformance seal; the judgment was never sealed by an operator.
	StatusMissingSeal Status = "MISSING_SEAL"

	// StatusUnknownOperator means the sealed entry names an operator
	// id the verifier's registry does not recognize.
	StatusUnknownOperator Status = "UNKNOWN_OPERATOR"

	// StatusSealMismatch means the claimed inputs and weights do not
	// reproduce the stored seal.
	StatusSealMismatch Status = "SEAL_MISMATCH"

	// StatusOutputMismatch means the seal matched but re-running the
	// operator on the claimed inputs produced a different triple.
	StatusOutputMismatch Status = "OUTPUT_MISMATCH"

	// StatusMalformedInput means the request could not be evaluated:
	// the claimed output fails structural validation, or the claimed
	// inputs cannot be canonicalized or fused.
	StatusMalformedInput Status = "MALFORMED_INPUT"
)

// Result reports a verification outcome with enough context to audit
// the decision.
type Result struct {
	Status Status `json:"status"`

	// OperatorID is the id named by the sealed provenance entry, when
	// one was found.
	OperatorID string `json:"operator_id,omitempty"`

	// Seal is the digest stored in the judgment.
	Seal string `json:"seal,omitempty"`

	// RecomputedSeal is the digest derived from the claimed inputs.
	// On SEAL_MISMATCH the two digests differ; on VERIFIED they match.
	RecomputedSeal string `json:"recomputed_seal,omitempty"`

	// Message describes the failure for humans and logs.
	Message string `json:"message,omitempty"`
}

// Verified reports whether the judgment passed both checks.
func (r Result) Verified() bool { return r.Status == StatusVerified }
