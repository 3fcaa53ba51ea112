package judgment

import (
	"encoding/json"
	"fmt"
)

// OutcomeType classifies an observed real-world result.
type OutcomeType string

const (
	OutcomeSuccess OutcomeType = "SUCCESS"
	OutcomeFailure OutcomeType = "FAILURE"
	OutcomePartial OutcomeType = "PARTIAL"
	OutcomeUnknown OutcomeType = "UNKNOWN"
)

// Valid reports whether t is one of the defined outcome types.
func (t OutcomeType) Valid() bool {
	switch t {
	case OutcomeSuccess, OutcomeFailure, OutcomePartial, OutcomeUnknown:
		return true
	}
	return false
}

// ParseOutcomeType converts a string to an OutcomeType.
func ParseOutcomeType(s string) (OutcomeType, error) {
	t := OutcomeType(s)
	if !t.Valid() {
		return "", newValidationError(ErrCodeInvalidInput, "outcome_type",
			"unknown outcome type %q: must be SUCCESS, FAILURE, PARTIAL, or UNKNOWN", s)
	}
	return t, nil
}

// Outcome is a judgment recording an observed real-world result, created
// once by an external observer after results are known and linked back to
// the decision judgment it grades.
//
// The link is a weak reference by id: the core does not enforce that the
// decision exists. Calibration analysis over decision/outcome pairs is a
// downstream concern.
type Outcome struct {
	Judgment

	// LinksToJudgmentID is the content-addressed id of the decision
	// judgment this outcome grades.
	LinksToJudgmentID string `json:"links_to_judgment_id"`

	// OutcomeType classifies the observed result.
	OutcomeType OutcomeType `json:"outcome_type"`

	// OracleSource names the observer that reported the result.
	OracleSource string `json:"oracle_source"`
}

// Validate re-checks all outcome invariants, including the embedded
// judgment's.
func (o Outcome) Validate() error {
	if err := o.Judgment.Validate(); err != nil {
		return err
	}
	if !IsDigest(o.LinksToJudgmentID) {
		return newValidationError(ErrCodeInvalidDigest, "links_to_judgment_id",
			"links_to_judgment_id must be 64 lowercase hex chars")
	}
	if !o.OutcomeType.Valid() {
		return newValidationError(ErrCodeInvalidInput, "outcome_type",
			"unknown outcome type %q", string(o.OutcomeType))
	}
	if o.OracleSource == "" {
		return newValidationError(ErrCodeInvalidInput, "oracle_source",
			"oracle_source must not be empty")
	}
	return nil
}

// ParseOutcome decodes and validates an outcome judgment from its JSON
// wire form.
func ParseOutcome(data []byte) (Outcome, error) {
	var o Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return Outcome{}, fmt.Errorf("parse outcome: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Outcome{}, err
	}
	return o, nil
}
