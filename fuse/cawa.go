package fuse

import (
	"math"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// cawa is the conflict-aware weighted average operator. It computes
// the weighted mean triple, measures how strongly the sources disagree
// about truth, and shifts probability mass from T and F into I in
// proportion to that disagreement. Unanimous sources pass through as a
// plain weighted average; a maximal split collapses to pure
// indeterminacy.
type cawa struct {
	stamper
}

// NewCAWA returns the conflict-aware weighted average operator,
// stamping provenance from ts. A nil ts uses system time.
func NewCAWA(ts judgment.TimestampSource) Operator {
	return cawa{stamper{ts: ts}}
}

func (cawa) ID() string { return CAWAOperatorID }

// Fuse combines judgments under raw weights. Weights are normalized
// for the arithmetic but sealed exactly as passed.
func (c cawa) Fuse(judgments []judgment.Judgment, weights []float64) (judgment.Judgment, error) {
	if err := validateInputs(judgments); err != nil {
		return judgment.Judgment{}, err
	}
	normalized, err := normalizeWeights(weights, len(judgments))
	if err != nil {
		return judgment.Judgment{}, err
	}

	var t0, i0, f0 float64
	for i, j := range judgments {
		t0 += normalized[i] * j.T
		i0 += normalized[i] * j.I
		f0 += normalized[i] * j.F
	}

	// Conflict is the weighted mean absolute deviation of T, doubled
	// so a 50/50 split between T=0 and T=1 saturates at 1.
	var spread float64
	for i, j := range judgments {
		spread += normalized[i] * math.Abs(j.T-t0)
	}
	kappa := math.Min(1, 2*spread)

	tv := t0 * (1 - kappa)
	fv := f0 * (1 - kappa)
	iv := i0 + kappa*(t0+f0)

	return c.finalize(tv, iv, fv, judgments, weights, CAWAOperatorID)
}
