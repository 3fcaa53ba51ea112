package conformance

import (
	"fmt"
	"math"

	"github.com/opentrustprotocol/otp-go/fuse"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

// Verifier checks fused judgments against the operators it was built
// with. The zero value is not usable; construct with NewVerifier.
type Verifier struct {
	operators *fuse.Registry
}

// NewVerifier returns a verifier resolving operator ids through
// operators. A nil registry uses fuse.DefaultRegistry with system
// timestamps; re-derivation discards the stamped chain, so the
// timestamp source never influences the outcome.
func NewVerifier(operators *fuse.Registry) Verifier {
	if operators == nil {
		operators = fuse.DefaultRegistry(nil)
	}
	return Verifier{operators: operators}
}

// Verify checks whether fused was produced by the operator named in
// its sealed provenance entry running on the claimed inputs and
// weights. Pass the weights exactly as they were passed to the
// operator; nil for the unweighted operators.
//
// Verify is total: every outcome, including ill-posed requests, is
// reported as a Result.
func (v Verifier) Verify(fused judgment.Judgment, inputs []judgment.Judgment, weights []float64) Result {
	if err := fused.Validate(); err != nil {
		return Result{
			Status:  StatusMalformedInput,
			Message: fmt.Sprintf("fused judgment: %v", err),
		}
	}

	entry, ok := fused.SealEntry()
	if !ok {
		return Result{
			Status:  StatusMissingSeal,
			Message: "no provenance entry carries a conformance seal",
		}
	}

	op, ok := v.operators.Get(entry.SourceID)
	if !ok {
		return Result{
			Status:     StatusUnknownOperator,
			OperatorID: entry.SourceID,
			Seal:       entry.ConformanceSeal,
			Message:    fmt.Sprintf("operator %q is not registered with this verifier", entry.SourceID),
		}
	}

	recomputed, err := seal.Generate(inputs, weights, entry.SourceID)
	if err != nil {
		return Result{
			Status:     StatusMalformedInput,
			OperatorID: entry.SourceID,
			Seal:       entry.ConformanceSeal,
			Message:    fmt.Sprintf("canonicalize claimed inputs: %v", err),
		}
	}
	if recomputed != entry.ConformanceSeal {
		return Result{
			Status:         StatusSealMismatch,
			OperatorID:     entry.SourceID,
			Seal:           entry.ConformanceSeal,
			RecomputedSeal: recomputed,
			Message:        "claimed inputs and weights do not reproduce the stored seal",
		}
	}

	rederived, err := op.Fuse(inputs, weights)
	if err != nil {
		return Result{
			Status:         StatusMalformedInput,
			OperatorID:     entry.SourceID,
			Seal:           entry.ConformanceSeal,
			RecomputedSeal: recomputed,
			Message:        fmt.Sprintf("re-derive output: %v", err),
		}
	}
	if !withinTolerance(fused, rederived) {
		return Result{
			Status:         StatusOutputMismatch,
			OperatorID:     entry.SourceID,
			Seal:           entry.ConformanceSeal,
			RecomputedSeal: recomputed,
			Message: fmt.Sprintf("re-derived (T=%v, I=%v, F=%v) does not match claimed (T=%v, I=%v, F=%v)",
				rederived.T, rederived.I, rederived.F, fused.T, fused.I, fused.F),
		}
	}

	return Result{
		Status:         StatusVerified,
		OperatorID:     entry.SourceID,
		Seal:           entry.ConformanceSeal,
		RecomputedSeal: recomputed,
	}
}

// MustConform is the strict form of Verify: nil when the judgment
// verifies, *ConformanceError for every other status.
func (v Verifier) MustConform(fused judgment.Judgment, inputs []judgment.Judgment, weights []float64) error {
	res := v.Verify(fused, inputs, weights)
	if res.Verified() {
		return nil
	}
	return &ConformanceError{Reason: res.Status, Message: res.Message}
}

// withinTolerance compares two triples component-wise within the
// conservation tolerance. Seals and ids are not compared: the seal was
// already matched, and timestamps legitimately differ between the
// original run and the re-derivation.
func withinTolerance(a, b judgment.Judgment) bool {
	eps := judgment.ConservationEpsilon
	return math.Abs(a.T-b.T) <= eps &&
		math.Abs(a.I-b.I) <= eps &&
		math.Abs(a.F-b.F) <= eps
}

// Verify checks fused against the built-in operators. See
// Verifier.Verify.
func Verify(fused judgment.Judgment, inputs []judgment.Judgment, weights []float64) Result {
	return NewVerifier(nil).Verify(fused, inputs, weights)
}

// MustConform checks fused against the built-in operators, failing
// with *ConformanceError on any non-verified status. See
// Verifier.MustConform.
func MustConform(fused judgment.Judgment, inputs []judgment.Judgment, weights []float64) error {
	return NewVerifier(nil).MustConform(fused, inputs, weights)
}
