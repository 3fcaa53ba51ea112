package identity

import (
	"github.com/opentrustprotocol/otp-go/canonical"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

// GenerateOutcomeID computes the content-addressed id of an outcome
// judgment. The payload covers T/I/F, the stripped chain, and the
// outcome's own fields (links_to_judgment_id, oracle_source,
// outcome_type), so outcomes hash into a distinct id space from plain
// judgments.
func GenerateOutcomeID(o judgment.Outcome) (string, error) {
	stripped := o
	stripped.Chain = stripIDs(o.Chain)
	payload, err := canonical.EncodeOutcome(stripped)
	if err != nil {
		return "", err
	}
	return seal.Sum(payload), nil
}

// EnsureOutcomeID returns an outcome that carries an id, appending an
// identity entry when none is present. Idempotent like
// EnsureJudgmentID.
func (a Assigner) EnsureOutcomeID(o judgment.Outcome) (judgment.Outcome, error) {
	if o.JudgmentID() != "" {
		return o, nil
	}
	id, err := GenerateOutcomeID(o)
	if err != nil {
		return judgment.Outcome{}, err
	}
	extended, err := o.Judgment.Appended(judgment.ProvenanceEntry{
		SourceID:   SourceID,
		Timestamp:  a.now(),
		JudgmentID: id,
	})
	if err != nil {
		return judgment.Outcome{}, err
	}
	o.Judgment = extended
	return o, nil
}

// NewOutcome records an observed real-world result against an earlier
// decision. This is the sole write path that creates the durable link
// between a decision and its outcome.
//
// The outcome's chain starts with a single entry naming the oracle
// source, then receives its own identity entry. linksTo must be a
// well-formed judgment id; the referenced decision is not required to
// exist (the link is a weak reference, checked by downstream
// calibration, not here).
func (a Assigner) NewOutcome(linksTo string, t, i, f float64, outcomeType judgment.OutcomeType, oracleSource string) (judgment.Outcome, error) {
	if oracleSource == "" {
		return judgment.Outcome{}, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "oracle_source",
			Message: "oracle_source must not be empty",
		}
	}
	base, err := judgment.New(t, i, f, []judgment.ProvenanceEntry{
		{SourceID: oracleSource, Timestamp: a.now()},
	})
	if err != nil {
		return judgment.Outcome{}, err
	}
	o := judgment.Outcome{
		Judgment:          base,
		LinksToJudgmentID: linksTo,
		OutcomeType:       outcomeType,
		OracleSource:      oracleSource,
	}
	if err := o.Validate(); err != nil {
		return judgment.Outcome{}, err
	}
	return a.EnsureOutcomeID(o)
}

// NewOutcome creates an outcome judgment using the system clock.
// See Assigner.NewOutcome.
func NewOutcome(linksTo string, t, i, f float64, outcomeType judgment.OutcomeType, oracleSource string) (judgment.Outcome, error) {
	return Assigner{}.NewOutcome(linksTo, t, i, f, outcomeType, oracleSource)
}
