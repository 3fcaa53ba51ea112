package fuse

import (
	"fmt"

	"github.com/opentrustprotocol/otp-go/identity"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

// Versioned operator ids. Each id pins an exact fusion formula and acts
// as the domain separator in seal payloads: a seal generated under one
// id never validates under another.
const (
	CAWAOperatorID        = "otp-cawa-v1.1"
	OptimisticOperatorID  = "otp-optimistic-v1.1"
	PessimisticOperatorID = "otp-pessimistic-v1.1"
)

// Operator is a fusion operator keyed by a versioned id.
//
// Fuse combines the input judgments into a new judgment. Operators with
// fixed semantics (optimistic, pessimistic) ignore weights entirely;
// the weighted operator requires them. Implementations must not mutate
// the inputs.
type Operator interface {
	// ID returns the versioned operator id, e.g. "otp-cawa-v1.1".
	ID() string

	// Fuse combines judgments into a new sealed judgment.
	Fuse(judgments []judgment.Judgment, weights []float64) (judgment.Judgment, error)
}

// stamper finalizes an operator's numeric result into a sealed
// judgment. The fusion entry and the identity entry are stamped from
// the same timestamp source, so one fusion consumes two timestamps.
type stamper struct {
	ts judgment.TimestampSource
}

func (s stamper) source() judgment.TimestampSource {
	if s.ts == nil {
		return judgment.SystemTimestamps{}
	}
	return s.ts
}

// finalize seals the inputs under operatorID and builds the fused
// judgment: a fresh chain carrying the sealed fusion entry, then an
// identity entry. sealWeights are the weights committed to the seal -
// the caller's weights as passed for the weighted operator, nil for
// the unweighted ones.
func (s stamper) finalize(tv, iv, fv float64, inputs []judgment.Judgment, sealWeights []float64, operatorID string) (judgment.Judgment, error) {
	digest, err := seal.Generate(inputs, sealWeights, operatorID)
	if err != nil {
		return judgment.Judgment{}, err
	}

	ts := s.source()
	fused, err := judgment.New(snapUnit(tv), snapUnit(iv), snapUnit(fv), []judgment.ProvenanceEntry{
		{SourceID: operatorID, Timestamp: ts.Now(), ConformanceSeal: digest},
	})
	if err != nil {
		return judgment.Judgment{}, err
	}
	return identity.Assigner{Timestamps: ts}.EnsureJudgmentID(fused)
}

// snapUnit snaps sub-tolerance arithmetic overshoot back onto [0,1].
// Operators are total over valid inputs: inputs at the conservation
// tolerance edge can carry a computed component a few ulp past a
// boundary. Only noise within ConservationEpsilon snaps; anything
// larger still fails output validation.
func snapUnit(v float64) float64 {
	if v < 0 && v >= -judgment.ConservationEpsilon {
		return 0
	}
	if v > 1 && v-1 <= judgment.ConservationEpsilon {
		return 1
	}
	return v
}

// validateInputs checks the shared operator precondition: at least one
// judgment, every judgment structurally valid. Operators re-check
// decoded inputs here because verification feeds them claimed inputs
// that never went through a constructor.
func validateInputs(judgments []judgment.Judgment) error {
	if len(judgments) == 0 {
		return &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "judgments",
			Message: "fusion requires at least one judgment",
		}
	}
	for i, j := range judgments {
		if err := j.Validate(); err != nil {
			return fmt.Errorf("judgment %d: %w", i, err)
		}
	}
	return nil
}
