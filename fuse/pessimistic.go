package fuse

import (
	"math"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// pessimistic is the worst-case fusion operator, the mirror of
// optimistic: minimum truth, maximum falsity, indeterminacy as the
// residual. Weights are ignored and the seal commits to none.
type pessimistic struct {
	stamper
}

// NewPessimistic returns the pessimistic operator, stamping provenance
// from ts. A nil ts uses system time.
func NewPessimistic(ts judgment.TimestampSource) Operator {
	return pessimistic{stamper{ts: ts}}
}

func (pessimistic) ID() string { return PessimisticOperatorID }

func (p pessimistic) Fuse(judgments []judgment.Judgment, _ []float64) (judgment.Judgment, error) {
	if err := validateInputs(judgments); err != nil {
		return judgment.Judgment{}, err
	}
	tv := judgments[0].T
	fv := judgments[0].F
	for _, j := range judgments[1:] {
		tv = math.Min(tv, j.T)
		fv = math.Max(fv, j.F)
	}
	tv, iv, fv := deriveIndeterminacy(tv, fv)
	return p.finalize(tv, iv, fv, judgments, nil, PessimisticOperatorID)
}
