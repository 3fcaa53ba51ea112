package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// approxUnit compares scenario-file decimals against replay-computed
// components within the conservation tolerance. Exact comparison would
// reject correct results: a scenario writes i: 0.3 where the replay
// computes 1 - 0.6 - 0.1 = 0.30000000000000004.
var approxUnit = cmp.Comparer(func(a, b float64) bool {
	return math.Abs(a-b) <= judgment.ConservationEpsilon
})

// AssertionError is returned when a replay expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Step     string // Which expectation failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Step)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)

	return buf.String()
}

// assertFusedTriple checks the fused components against the scenario's
// expected triple within the conservation tolerance.
func assertFusedTriple(want TripleSpec, got judgment.Judgment) error {
	w := [3]float64{want.T, want.I, want.F}
	g := [3]float64{got.T, got.I, got.F}
	if cmp.Equal(w, g, approxUnit) {
		return nil
	}
	return &AssertionError{
		Step:     "fused",
		Expected: formatTriple(want.T, want.I, want.F),
		Actual:   formatTriple(got.T, got.I, got.F),
	}
}

// assertSealed checks that the fusion stamped a well-formed seal and
// judgment id onto the fused chain.
func assertSealed(fused judgment.Judgment) error {
	entry, ok := fused.SealEntry()
	if !ok {
		return &AssertionError{
			Step:     "seal",
			Expected: "a provenance entry carrying a conformance seal",
			Actual:   "no sealed entry in the fused chain",
		}
	}
	if !judgment.IsDigest(entry.ConformanceSeal) {
		return &AssertionError{
			Step:     "seal",
			Expected: "a 64 lowercase hex digest",
			Actual:   fmt.Sprintf("%q", entry.ConformanceSeal),
		}
	}
	if id := fused.JudgmentID(); !judgment.IsDigest(id) {
		return &AssertionError{
			Step:     "judgment_id",
			Expected: "a 64 lowercase hex digest",
			Actual:   fmt.Sprintf("%q", id),
		}
	}
	return nil
}

func formatTriple(t, i, f float64) string {
	return fmt.Sprintf("T=%v I=%v F=%v", t, i, f)
}
