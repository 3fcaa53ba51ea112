package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/opentrustprotocol/otp-go/canonical"
	"github.com/opentrustprotocol/otp-go/seal"
)

// RunWithGolden replays a scenario and pins its canonical seal payload
// and seal digest against golden files:
//
//	testdata/golden/{scenario.Name}_payload.golden
//	testdata/golden/{scenario.Name}_seal.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The payload golden is the byte-exact canonical encoding of the
// fusion request; any drift in key order, number formatting, string
// escaping, or weight handling shows up as a diff rather than as a
// bare digest change. Replay expectation failures are reported on t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	payload, err := assertSealGolden(t, scenario)
	if err != nil {
		return err
	}

	// The pinned payload must be the one the live replay sealed.
	if digest := seal.Sum(payload); digest != result.Seal {
		t.Errorf("replay sealed %s, canonical payload hashes to %s", result.Seal, digest)
	}

	return nil
}

// AssertSealGolden pins the canonical payload bytes and seal digest
// for the scenario's fusion request without checking replay
// expectations. Useful when the golden comparison is the whole point
// of the test.
func AssertSealGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	_, err := assertSealGolden(t, scenario)
	return err
}

func assertSealGolden(t *testing.T, scenario *Scenario) ([]byte, error) {
	t.Helper()

	inputs, err := BuildInputs(scenario)
	if err != nil {
		return nil, err
	}

	// Scenario weights are the sealed weights: the weighted operator
	// seals them as passed, the unweighted operators seal none and
	// their scenarios carry none.
	payload, err := canonical.Canonicalize(inputs, scenario.Weights, scenario.Operator)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name+"_payload", payload)
	g.Assert(t, scenario.Name+"_seal", []byte(seal.Sum(payload)))

	return payload, nil
}
