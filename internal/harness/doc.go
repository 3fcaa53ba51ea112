// Package harness replays fusion scenarios as executable conformance
// fixtures.
//
// A scenario names its input judgments with fixed timestamps, the
// operator and weights to fuse them under, the expected fused triple
// and verification status, and tamper mutations that must each flip
// verification to a specific failure status. Replaying one exercises
// the real pipeline end to end: construct the inputs, fuse them,
// verify the fused judgment against the claimed inputs and weights,
// then re-verify once per tamper.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: cawa_three_sensors
//	description: "Conflict-aware fusion of three disagreeing sensors"
//	operator: otp-cawa-v1.1
//	judgments:
//	  - t: 0.8
//	    i: 0.2
//	    f: 0.0
//	    source_id: sensor1
//	    timestamp: "2023-06-01T00:00:00Z"
//	weights: [0.4, 0.3, 0.3]
//	expect:
//	  status: VERIFIED
//	  fused: { t: 0.61292, i: 0.35126, f: 0.03582 }
//	tampers:
//	  - name: swapped_components
//	    kind: swap_truth_falsity
//	    expect_status: OUTPUT_MISMATCH
//
// # Tamper Kinds
//
// The following tamper kinds are supported:
//
//   - swap_truth_falsity: swap T and F on the fused judgment
//   - raise_truth: add delta to the fused T, breaking conservation
//   - alter_input: rewrite components of one claimed input
//   - drop_seal: strip the sealed entry from the fused chain
//   - relabel_operator: rewrite the operator id on the sealed entry
//   - drop_weights: re-verify with no claimed weights
//   - reorder_inputs: swap the first two claimed inputs
//
// # Deterministic Replay
//
// Expected triples compare within the conservation tolerance, because
// scenario files hold decimal literals while the replay computes in
// binary floating point. Seal payloads, by contrast, are reproducible
// to the byte: every timestamp entering the payload is fixed by the
// scenario, so golden files pin the exact canonical payload bytes and
// the seal digests derived from them.
//
// # Usage
//
// Load and replay a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/cawa_three_sensors.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
