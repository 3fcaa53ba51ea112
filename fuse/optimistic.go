package fuse

import (
	"math"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// optimistic is the best-case fusion operator: maximum truth and
// minimum falsity across the inputs, indeterminacy as the residual.
// Weights are ignored and the seal commits to none.
type optimistic struct {
	stamper
}

// NewOptimistic returns the optimistic operator, stamping provenance
// from ts. A nil ts uses system time.
func NewOptimistic(ts judgment.TimestampSource) Operator {
	return optimistic{stamper{ts: ts}}
}

func (optimistic) ID() string { return OptimisticOperatorID }

func (o optimistic) Fuse(judgments []judgment.Judgment, _ []float64) (judgment.Judgment, error) {
	if err := validateInputs(judgments); err != nil {
		return judgment.Judgment{}, err
	}
	tv := judgments[0].T
	fv := judgments[0].F
	for _, j := range judgments[1:] {
		tv = math.Max(tv, j.T)
		fv = math.Min(fv, j.F)
	}
	tv, iv, fv := deriveIndeterminacy(tv, fv)
	return o.finalize(tv, iv, fv, judgments, nil, OptimisticOperatorID)
}

// deriveIndeterminacy fills in I = 1 - T - F for the extreme
// operators. Valid inputs can only push the residual below zero by
// float noise, but claimed triples replayed during verification may
// over-commit arbitrarily, so a negative residual rescales T and F to
// conserve mass instead of producing an invalid judgment.
func deriveIndeterminacy(tv, fv float64) (float64, float64, float64) {
	iv := 1 - tv - fv
	if iv < 0 {
		total := tv + fv
		return tv / total, 0, fv / total
	}
	return tv, iv, fv
}
