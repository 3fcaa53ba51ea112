package harness

import (
	"fmt"

	"github.com/opentrustprotocol/otp-go/conformance"
	"github.com/opentrustprotocol/otp-go/fuse"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// DefaultSealedAt stamps the fusion and identity entries when a
// scenario does not pin its own sealed_at. The value is arbitrary:
// the fused judgment's own timestamps are outside the seal payload,
// they only need to be fixed so whole-result comparisons reproduce.
const DefaultSealedAt = "2023-06-01T12:00:00Z"

// Run replays a scenario and returns the result.
//
// Execution flow:
//  1. Construct the input judgments from their specs
//  2. Fuse them under the scenario's operator and weights
//  3. Check the fused triple and seal against the expect clause
//  4. Verify the untampered replay
//  5. Apply each tamper to a fresh copy and verify again
//
// Scenario-level problems (unreadable fixtures, unknown operator,
// fusion failure) return an error; expectation mismatches are recorded
// on the Result instead.
func Run(scenario *Scenario) (*Result, error) {
	inputs, err := BuildInputs(scenario)
	if err != nil {
		return nil, err
	}

	fused, err := fuseScenario(scenario, inputs)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.JudgmentID = fused.JudgmentID()

	if err := assertSealed(fused); err != nil {
		result.AddError(err.Error())
	} else {
		entry, _ := fused.SealEntry()
		result.Seal = entry.ConformanceSeal
	}

	if scenario.Expect.Fused != nil {
		if err := assertFusedTriple(*scenario.Expect.Fused, fused); err != nil {
			result.AddError(err.Error())
		}
	}

	// The verifier re-derives outputs internally, so its timestamp
	// source never influences the outcome.
	verifier := conformance.NewVerifier(nil)

	res := verifier.Verify(fused, inputs, scenario.Weights)
	result.AddStep("expect", scenario.Expect.Status, string(res.Status))

	for _, tamper := range scenario.Tampers {
		tampered, claimedInputs, claimedWeights, err := applyTamper(tamper, fused, inputs, scenario.Weights)
		if err != nil {
			return nil, fmt.Errorf("tamper %q: %w", tamper.Name, err)
		}
		res := verifier.Verify(tampered, claimedInputs, claimedWeights)
		result.AddStep(tamper.Name, tamper.ExpectStatus, string(res.Status))
	}

	return result, nil
}

// fuseScenario fuses the inputs under the scenario's operator with the
// scenario's fixed stamps. One fusion stamps two entries, the sealed
// fusion entry and the identity entry, so the timestamp source carries
// two values.
func fuseScenario(scenario *Scenario, inputs []judgment.Judgment) (judgment.Judgment, error) {
	sealedAt := scenario.SealedAt
	if sealedAt == "" {
		sealedAt = DefaultSealedAt
	}
	registry := fuse.DefaultRegistry(judgment.NewFixedTimestamps(sealedAt, sealedAt))
	op, ok := registry.Get(scenario.Operator)
	if !ok {
		return judgment.Judgment{}, fmt.Errorf("unknown operator %q", scenario.Operator)
	}
	return op.Fuse(inputs, scenario.Weights)
}

// BuildInputs constructs the scenario's input judgments in fusion
// order. Each carries a single provenance entry with the fixed source
// id and timestamp from its spec.
func BuildInputs(scenario *Scenario) ([]judgment.Judgment, error) {
	inputs := make([]judgment.Judgment, len(scenario.Judgments))
	for i, spec := range scenario.Judgments {
		j, err := judgment.New(spec.T, spec.I, spec.F, []judgment.ProvenanceEntry{{
			SourceID:  spec.SourceID,
			Timestamp: spec.Timestamp,
		}})
		if err != nil {
			return nil, fmt.Errorf("judgments[%d]: %w", i, err)
		}
		inputs[i] = j
	}
	return inputs, nil
}

// applyTamper returns the tampered replay state: the fused judgment,
// claimed inputs, and claimed weights to hand the verifier. The
// originals are never mutated; chain and input slices are copied
// before any edit.
func applyTamper(t Tamper, fused judgment.Judgment, inputs []judgment.Judgment, weights []float64) (judgment.Judgment, []judgment.Judgment, []float64, error) {
	switch t.Kind {
	case TamperSwapTruthFalsity:
		fused.T, fused.F = fused.F, fused.T
		return fused, inputs, weights, nil

	case TamperRaiseTruth:
		fused.T += t.Delta
		return fused, inputs, weights, nil

	case TamperAlterInput:
		if t.Input < 0 || t.Input >= len(inputs) {
			return judgment.Judgment{}, nil, nil, fmt.Errorf("input index %d out of range for %d judgments", t.Input, len(inputs))
		}
		claimed := append([]judgment.Judgment(nil), inputs...)
		altered := claimed[t.Input]
		if t.T != nil {
			altered.T = *t.T
		}
		if t.I != nil {
			altered.I = *t.I
		}
		if t.F != nil {
			altered.F = *t.F
		}
		claimed[t.Input] = altered
		return fused, claimed, weights, nil

	case TamperDropSeal:
		chain := make([]judgment.ProvenanceEntry, 0, len(fused.Chain))
		for _, e := range fused.Chain {
			if e.ConformanceSeal == "" {
				chain = append(chain, e)
			}
		}
		fused.Chain = chain
		return fused, inputs, weights, nil

	case TamperRelabelOperator:
		chain := append([]judgment.ProvenanceEntry(nil), fused.Chain...)
		for i := len(chain) - 1; i >= 0; i-- {
			if chain[i].ConformanceSeal != "" {
				chain[i].SourceID = t.Operator
				break
			}
		}
		fused.Chain = chain
		return fused, inputs, weights, nil

	case TamperDropWeights:
		return fused, inputs, nil, nil

	case TamperReorderInputs:
		if len(inputs) < 2 {
			return judgment.Judgment{}, nil, nil, fmt.Errorf("reorder_inputs requires at least two judgments, got %d", len(inputs))
		}
		claimed := append([]judgment.Judgment(nil), inputs...)
		claimed[0], claimed[1] = claimed[1], claimed[0]
		return fused, claimed, weights, nil

	default:
		return judgment.Judgment{}, nil, nil, fmt.Errorf("unknown tamper kind %q", t.Kind)
	}
}
