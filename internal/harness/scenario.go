package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is a replayable fusion fixture. It names the input judgments
// with fixed timestamps, the operator and weights to fuse them under,
// the expected fused triple and verification status, and a set of
// tamper mutations that must each flip verification to a specific
// failure status.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed
	// by it.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// Operator is the versioned operator id, e.g. "otp-cawa-v1.1".
	Operator string `yaml:"operator"`

	// Judgments lists the input judgments in fusion order.
	Judgments []JudgmentSpec `yaml:"judgments"`

	// Weights are passed to the operator and to verification exactly
	// as written. Omit for the unweighted operators: they seal nil
	// weights, and claiming weights they never sealed fails
	// verification.
	Weights []float64 `yaml:"weights,omitempty"`

	// Expect states the required outcome of the untampered replay.
	Expect ExpectClause `yaml:"expect"`

	// Tampers lists mutations applied to fresh copies of the fused
	// judgment or its inputs. Each must produce its expected status.
	Tampers []Tamper `yaml:"tampers,omitempty"`

	// SealedAt is an optional fixed timestamp for the entries the
	// fusion appends. If empty, defaults to a package constant so
	// replays stay byte-reproducible.
	SealedAt string `yaml:"sealed_at,omitempty"`
}

// JudgmentSpec describes one input judgment. The timestamp is required:
// provenance participates in the seal payload, so a wall-clock stamp
// would change the seal on every run.
type JudgmentSpec struct {
	T         float64 `yaml:"t"`
	I         float64 `yaml:"i"`
	F         float64 `yaml:"f"`
	SourceID  string  `yaml:"source_id"`
	Timestamp string  `yaml:"timestamp"`
}

// ExpectClause specifies the expected outcome of the untampered replay.
type ExpectClause struct {
	// Status is the expected verification status, normally "VERIFIED".
	Status string `yaml:"status"`

	// Fused, if present, is the expected fused triple. Components are
	// compared within the conservation tolerance, never exactly:
	// scenario files hold decimal literals, the replay computes in
	// binary floating point.
	Fused *TripleSpec `yaml:"fused,omitempty"`
}

// TripleSpec is an expected (T, I, F) triple.
type TripleSpec struct {
	T float64 `yaml:"t"`
	I float64 `yaml:"i"`
	F float64 `yaml:"f"`
}

// Tamper is a named mutation applied to a fresh copy of the replay
// state before re-verification.
type Tamper struct {
	// Name identifies the tamper in step results.
	Name string `yaml:"name"`

	// Kind selects the mutation. See the Tamper* constants.
	Kind string `yaml:"kind"`

	// ExpectStatus is the verification status the mutation must
	// produce.
	ExpectStatus string `yaml:"expect_status"`

	// Delta is added to the fused T (kind raise_truth).
	Delta float64 `yaml:"delta,omitempty"`

	// Input is the index of the judgment to alter (kind alter_input).
	Input int `yaml:"input,omitempty"`

	// T, I, F replace the corresponding components of the altered
	// input when set (kind alter_input).
	T *float64 `yaml:"t,omitempty"`
	I *float64 `yaml:"i,omitempty"`
	F *float64 `yaml:"f,omitempty"`

	// Operator replaces the operator id on the sealed entry
	// (kind relabel_operator).
	Operator string `yaml:"operator,omitempty"`
}

// Tamper kinds.
const (
	// TamperSwapTruthFalsity swaps T and F on the fused judgment.
	// Conservation holds, the seal still matches, and only the
	// re-derived output exposes the lie.
	TamperSwapTruthFalsity = "swap_truth_falsity"

	// TamperRaiseTruth adds Delta to the fused T, breaking
	// conservation.
	TamperRaiseTruth = "raise_truth"

	// TamperAlterInput rewrites components of one claimed input.
	TamperAlterInput = "alter_input"

	// TamperDropSeal strips the sealed entry from the fused chain.
	TamperDropSeal = "drop_seal"

	// TamperRelabelOperator rewrites the operator id on the sealed
	// entry. An unregistered id is rejected outright; a different
	// registered id fails the seal check, because the id is part of
	// the sealed payload.
	TamperRelabelOperator = "relabel_operator"

	// TamperDropWeights re-verifies with no claimed weights.
	TamperDropWeights = "drop_weights"

	// TamperReorderInputs swaps the first two claimed inputs.
	TamperReorderInputs = "reorder_inputs"
)

// knownStatuses enumerates the verification statuses a scenario may
// expect. Kept as strings so scenario files round-trip without
// importing the conformance package here.
var knownStatuses = map[string]bool{
	"VERIFIED":         true,
	"MISSING_SEAL":     true,
	"UNKNOWN_OPERATOR": true,
	"SEAL_MISMATCH":    true,
	"OUTPUT_MISMATCH":  true,
	"MALFORMED_INPUT":  true,
}

var knownTamperKinds = map[string]bool{
	TamperSwapTruthFalsity: true,
	TamperRaiseTruth:       true,
	TamperAlterInput:       true,
	TamperDropSeal:         true,
	TamperRelabelOperator:  true,
	TamperDropWeights:      true,
	TamperReorderInputs:    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "tamper:" vs "tampers:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every scenario file under dir (non-recursive),
// sorted by filename so runs are ordered deterministically. Files must
// end in .yaml or .yml.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[scenario.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, scenario.Name, prev)
		}
		seen[scenario.Name] = path
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Operator == "" {
		return fmt.Errorf("operator is required")
	}

	if len(s.Judgments) == 0 {
		return fmt.Errorf("judgments list is required and must be non-empty")
	}

	for i, j := range s.Judgments {
		if j.SourceID == "" {
			return fmt.Errorf("judgments[%d]: source_id is required", i)
		}
		if j.Timestamp == "" {
			return fmt.Errorf("judgments[%d]: timestamp is required (wall-clock stamps break seal reproducibility)", i)
		}
	}

	if len(s.Weights) > 0 && len(s.Weights) != len(s.Judgments) {
		return fmt.Errorf("weights: got %d weights for %d judgments", len(s.Weights), len(s.Judgments))
	}

	if s.Expect.Status == "" {
		return fmt.Errorf("expect.status is required")
	}
	if !knownStatuses[s.Expect.Status] {
		return fmt.Errorf("expect.status: unknown verification status %q", s.Expect.Status)
	}

	for i, tamper := range s.Tampers {
		if err := validateTamper(i, &tamper, len(s.Judgments)); err != nil {
			return err
		}
	}

	return nil
}

// validateTamper validates a single tamper based on its kind.
func validateTamper(index int, t *Tamper, inputs int) error {
	if t.Name == "" {
		return fmt.Errorf("tampers[%d]: name is required", index)
	}
	if t.Kind == "" {
		return fmt.Errorf("tampers[%d]: kind is required", index)
	}
	if !knownTamperKinds[t.Kind] {
		return fmt.Errorf("tampers[%d]: unknown tamper kind %q", index, t.Kind)
	}
	if t.ExpectStatus == "" {
		return fmt.Errorf("tampers[%d]: expect_status is required", index)
	}
	if !knownStatuses[t.ExpectStatus] {
		return fmt.Errorf("tampers[%d]: unknown verification status %q", index, t.ExpectStatus)
	}

	switch t.Kind {
	case TamperRaiseTruth:
		if t.Delta == 0 {
			return fmt.Errorf("tampers[%d]: delta is required for raise_truth", index)
		}
	case TamperAlterInput:
		if t.Input < 0 || t.Input >= inputs {
			return fmt.Errorf("tampers[%d]: input index %d out of range for %d judgments", index, t.Input, inputs)
		}
		if t.T == nil && t.I == nil && t.F == nil {
			return fmt.Errorf("tampers[%d]: alter_input requires at least one of t, i, f", index)
		}
	case TamperRelabelOperator:
		if t.Operator == "" {
			return fmt.Errorf("tampers[%d]: operator is required for relabel_operator", index)
		}
	case TamperReorderInputs:
		if inputs < 2 {
			return fmt.Errorf("tampers[%d]: reorder_inputs requires at least two judgments", index)
		}
	}

	return nil
}
