package harness

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/opentrustprotocol/otp-go/canonical"
	"github.com/opentrustprotocol/otp-go/fuse"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

// Protocol properties checked against every scenario. Each follows
// from the seal construction itself rather than from any one
// operator's arithmetic, so every well-formed scenario must exhibit
// all of them.
const (
	// PropertyReplay: the scenario's own expectations hold.
	PropertyReplay = "replay"

	// PropertyDeterminism: fusing the same inputs, weights, and stamps
	// again reproduces the identical triple, seal, and judgment id.
	PropertyDeterminism = "determinism"

	// PropertyOrderSensitivity: inputs are sealed in caller order, so
	// reordering them changes the seal.
	PropertyOrderSensitivity = "order_sensitivity"

	// PropertyWeightScaling: scaling every weight by a constant leaves
	// the fused triple unchanged but changes the seal, which commits
	// to the raw weights as passed.
	PropertyWeightScaling = "weight_scaling"

	// PropertyOperatorSeparation: the operator id is part of the
	// sealed payload, so the same request seals differently under
	// every other registered operator.
	PropertyOperatorSeparation = "operator_separation"
)

// errPropertySkipped marks a property check that does not apply to the
// scenario, e.g. order sensitivity with a single input.
var errPropertySkipped = errors.New("property does not apply")

// PropertyFailure represents a failed property check.
type PropertyFailure struct {
	Scenario string `json:"scenario"`
	Property string `json:"property"`
	Error    string `json:"error"`
}

// ValidationResult summarizes property checks across scenarios.
type ValidationResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	TotalChecks    int               `json:"total_checks"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Skipped        int               `json:"skipped"` // Checks that do not apply
	Failures       []PropertyFailure `json:"failures,omitempty"`
}

// ValidateProperties checks the protocol properties against one
// scenario. Returns an error only when the scenario itself cannot be
// set up; property violations are reported in the result.
func ValidateProperties(scenario *Scenario) (*ValidationResult, error) {
	inputs, err := BuildInputs(scenario)
	if err != nil {
		return nil, err
	}

	checks := []struct {
		name  string
		check func(*Scenario, []judgment.Judgment) error
	}{
		{PropertyDeterminism, checkDeterminism},
		{PropertyOrderSensitivity, checkOrderSensitivity},
		{PropertyWeightScaling, checkWeightScaling},
		{PropertyOperatorSeparation, checkOperatorSeparation},
	}

	result := &ValidationResult{TotalScenarios: 1}
	for _, c := range checks {
		result.TotalChecks++
		err := c.check(scenario, inputs)
		switch {
		case err == nil:
			result.Passed++
		case errors.Is(err, errPropertySkipped):
			result.Skipped++
		default:
			result.Failed++
			result.Failures = append(result.Failures, PropertyFailure{
				Scenario: scenario.Name,
				Property: c.name,
				Error:    err.Error(),
			})
		}
	}
	return result, nil
}

// ValidateScenarioDir loads every scenario under dir, replays each
// against its own expectations, and checks the protocol properties.
// Returns a summary of results.
func ValidateScenarioDir(dir string) (*ValidationResult, error) {
	scenarios, err := LoadScenarioDir(dir)
	if err != nil {
		return nil, err
	}

	total := &ValidationResult{}
	for _, scenario := range scenarios {
		total.TotalScenarios++

		// Replay counts as a check: a scenario whose own expectations
		// fail would vacuously satisfy the properties.
		total.TotalChecks++
		runResult, err := Run(scenario)
		switch {
		case err != nil:
			total.Failed++
			total.Failures = append(total.Failures, PropertyFailure{
				Scenario: scenario.Name,
				Property: PropertyReplay,
				Error:    fmt.Sprintf("scenario execution failed: %v", err),
			})
		case !runResult.Pass:
			total.Failed++
			total.Failures = append(total.Failures, PropertyFailure{
				Scenario: scenario.Name,
				Property: PropertyReplay,
				Error:    fmt.Sprintf("scenario expectations failed: %v", runResult.Errors),
			})
		default:
			total.Passed++
		}

		props, err := ValidateProperties(scenario)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", scenario.Name, err)
		}
		total.TotalChecks += props.TotalChecks
		total.Passed += props.Passed
		total.Failed += props.Failed
		total.Skipped += props.Skipped
		total.Failures = append(total.Failures, props.Failures...)
	}
	return total, nil
}

func checkDeterminism(s *Scenario, inputs []judgment.Judgment) error {
	first, err := fuseScenario(s, inputs)
	if err != nil {
		return err
	}
	second, err := fuseScenario(s, inputs)
	if err != nil {
		return err
	}

	// Same binary computation both times, so exact comparison is
	// correct here.
	if first.T != second.T || first.I != second.I || first.F != second.F {
		return fmt.Errorf("replay produced a different triple: %s then %s",
			formatTriple(first.T, first.I, first.F), formatTriple(second.T, second.I, second.F))
	}
	firstSeal, _ := first.SealEntry()
	secondSeal, _ := second.SealEntry()
	if firstSeal.ConformanceSeal != secondSeal.ConformanceSeal {
		return fmt.Errorf("replay produced a different seal: %s then %s",
			firstSeal.ConformanceSeal, secondSeal.ConformanceSeal)
	}
	if first.JudgmentID() != second.JudgmentID() {
		return fmt.Errorf("replay produced a different judgment id: %s then %s",
			first.JudgmentID(), second.JudgmentID())
	}
	return nil
}

func checkOrderSensitivity(s *Scenario, inputs []judgment.Judgment) error {
	if len(inputs) < 2 {
		return errPropertySkipped
	}

	reversed := make([]judgment.Judgment, len(inputs))
	for i, j := range inputs {
		reversed[len(inputs)-1-i] = j
	}

	original, err := canonical.Canonicalize(inputs, s.Weights, s.Operator)
	if err != nil {
		return err
	}
	flipped, err := canonical.Canonicalize(reversed, s.Weights, s.Operator)
	if err != nil {
		return err
	}
	if bytes.Equal(original, flipped) {
		// Identical judgments encode identically in either order.
		return errPropertySkipped
	}
	if seal.Sum(original) == seal.Sum(flipped) {
		return fmt.Errorf("reordered inputs reproduced seal %s", seal.Sum(original))
	}
	return nil
}

func checkWeightScaling(s *Scenario, inputs []judgment.Judgment) error {
	if len(s.Weights) == 0 {
		return errPropertySkipped
	}

	base, err := fuseScenario(s, inputs)
	if err != nil {
		return err
	}
	baseSeal, _ := base.SealEntry()

	// An operator that ignores weights seals none; scaling is a no-op
	// for it.
	unweighted, err := seal.Generate(inputs, nil, s.Operator)
	if err != nil {
		return err
	}
	if baseSeal.ConformanceSeal == unweighted {
		return errPropertySkipped
	}

	scaled := *s
	scaled.Weights = make([]float64, len(s.Weights))
	for i, w := range s.Weights {
		scaled.Weights[i] = w * 10
	}
	rescaled, err := fuseScenario(&scaled, inputs)
	if err != nil {
		return err
	}

	want := [3]float64{base.T, base.I, base.F}
	got := [3]float64{rescaled.T, rescaled.I, rescaled.F}
	if !cmp.Equal(want, got, approxUnit) {
		return fmt.Errorf("scaled weights changed the fused triple: %s vs %s",
			formatTriple(base.T, base.I, base.F), formatTriple(rescaled.T, rescaled.I, rescaled.F))
	}

	rescaledSeal, _ := rescaled.SealEntry()
	if baseSeal.ConformanceSeal == rescaledSeal.ConformanceSeal {
		return fmt.Errorf("seal does not commit to the raw weights: %s", baseSeal.ConformanceSeal)
	}
	return nil
}

func checkOperatorSeparation(s *Scenario, inputs []judgment.Judgment) error {
	base, err := seal.Generate(inputs, s.Weights, s.Operator)
	if err != nil {
		return err
	}
	for _, id := range fuse.DefaultRegistry(nil).IDs() {
		if id == s.Operator {
			continue
		}
		other, err := seal.Generate(inputs, s.Weights, id)
		if err != nil {
			return err
		}
		if other == base {
			return fmt.Errorf("operator %q reproduced the seal generated under %q", id, s.Operator)
		}
	}
	return nil
}
