package fuse

import (
	"fmt"
	"math"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// normalizeWeights validates weights against the judgment count and
// returns a fresh slice scaled to sum to 1. Raw weights are arbitrary
// non-negative magnitudes; only their ratios matter for fusion. The
// seal still commits to the raw values, so [1,1,1] and [10,10,10]
// produce the same triple but different seals.
func normalizeWeights(weights []float64, n int) ([]float64, error) {
	if len(weights) != n {
		return nil, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidWeights,
			Field:   "weights",
			Message: fmt.Sprintf("got %d weights for %d judgments", len(weights), n),
		}
	}
	var sum float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, &judgment.ValidationError{
				Code:    judgment.ErrCodeInvalidWeights,
				Field:   fmt.Sprintf("weights[%d]", i),
				Message: "weight must be finite",
			}
		}
		if w < 0 {
			return nil, &judgment.ValidationError{
				Code:    judgment.ErrCodeInvalidWeights,
				Field:   fmt.Sprintf("weights[%d]", i),
				Message: fmt.Sprintf("weight is negative: %v", w),
			}
		}
		sum += w
	}
	if sum <= 0 {
		return nil, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidWeights,
			Field:   "weights",
			Message: "weights sum to zero",
		}
	}
	normalized := make([]float64, n)
	for i, w := range weights {
		normalized[i] = w / sum
	}
	return normalized, nil
}
