package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/opentrustprotocol/otp-go/fuse"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// operatorShortNames maps the names accepted by --op to versioned
// operator ids.
var operatorShortNames = map[string]string{
	"cawa":        fuse.CAWAOperatorID,
	"optimistic":  fuse.OptimisticOperatorID,
	"pessimistic": fuse.PessimisticOperatorID,
}

// resolveOperatorID maps a short operator name, or a full versioned id,
// to the versioned operator id.
func resolveOperatorID(name string) (string, error) {
	if id, ok := operatorShortNames[name]; ok {
		return id, nil
	}
	for _, id := range operatorShortNames {
		if id == name {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown operator %q: use cawa, optimistic, or pessimistic", name)
}

// resolveOperator resolves a short name to a registered operator.
func resolveOperator(name string) (fuse.Operator, error) {
	id, err := resolveOperatorID(name)
	if err != nil {
		return nil, err
	}
	op, ok := fuse.DefaultRegistry(nil).Get(id)
	if !ok {
		return nil, fmt.Errorf("operator %q is not registered", id)
	}
	return op, nil
}

// parseWeights parses a comma-separated weight list. An empty string
// means no weights were passed.
func parseWeights(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	weights := make([]float64, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q", p)
		}
		weights = append(weights, w)
	}
	return weights, nil
}

// readJudgment reads and validates a single judgment document.
func readJudgment(path string) (judgment.Judgment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return judgment.Judgment{}, err
	}
	return judgment.Parse(data)
}

// readJudgments reads and validates a JSON array of judgments.
func readJudgments(path string) ([]judgment.Judgment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return judgment.ParseList(data)
}

// readJudgmentLoose decodes a judgment without validating it, so the
// verifier can classify malformed documents as MALFORMED_INPUT instead
// of refusing them at the parse step.
func readJudgmentLoose(path string) (judgment.Judgment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return judgment.Judgment{}, err
	}
	var j judgment.Judgment
	if err := json.Unmarshal(data, &j); err != nil {
		return judgment.Judgment{}, fmt.Errorf("parse judgment: %w", err)
	}
	return j, nil
}

// readJudgmentsLoose decodes a JSON array of judgments without
// validating the elements.
func readJudgmentsLoose(path string) ([]judgment.Judgment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var judgments []judgment.Judgment
	if err := json.Unmarshal(data, &judgments); err != nil {
		return nil, fmt.Errorf("parse judgments: %w", err)
	}
	return judgments, nil
}

// outputInputError reports a failure to read or parse an input file.
// Judgment validation failures exit 1; missing files and syntax
// problems are command errors and exit 2.
func outputInputError(f *OutputFormatter, err error) error {
	code := ErrCodeParseFailed
	exit := ExitCommandError
	switch {
	case os.IsNotExist(err):
		code = ErrCodeNotFound
	case judgment.IsValidationError(err):
		code = ErrCodeInvalidJudgment
		exit = ExitFailure
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exit, "reading input", err)
}

// outputJudgment prints a judgment in the configured format. The text
// form shows the triple plus the seal and id when present.
func outputJudgment(f *OutputFormatter, j judgment.Judgment) error {
	if f.Format == "json" {
		return f.Success(j)
	}
	fmt.Fprintf(f.Writer, "T=%g I=%g F=%g\n", j.T, j.I, j.F)
	if entry, ok := j.SealEntry(); ok {
		fmt.Fprintf(f.Writer, "operator: %s\n", entry.SourceID)
		fmt.Fprintf(f.Writer, "seal: %s\n", entry.ConformanceSeal)
	}
	if id := j.JudgmentID(); id != "" {
		fmt.Fprintf(f.Writer, "judgment_id: %s\n", id)
	}
	return nil
}
