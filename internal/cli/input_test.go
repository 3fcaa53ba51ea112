package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrustprotocol/otp-go/fuse"
	"github.com/opentrustprotocol/otp-go/judgment"
)

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr string
	}{
		{"empty_means_unweighted", "", nil, ""},
		{"single", "1", []float64{1}, ""},
		{"multiple", "1,2,0.5", []float64{1, 2, 0.5}, ""},
		{"spaces_trimmed", " 0.5 , 0.25 ", []float64{0.5, 0.25}, ""},
		{"not_a_number", "1,abc", nil, "invalid weight"},
		{"trailing_comma", "1,2,", nil, "invalid weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWeights(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOperatorID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cawa_short", "cawa", fuse.CAWAOperatorID},
		{"optimistic_short", "optimistic", fuse.OptimisticOperatorID},
		{"pessimistic_short", "pessimistic", fuse.PessimisticOperatorID},
		{"full_id", fuse.CAWAOperatorID, fuse.CAWAOperatorID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveOperatorID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolveOperatorID("bayesian")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operator")
}

func TestResolveOperator(t *testing.T) {
	op, err := resolveOperator("cawa")
	require.NoError(t, err)
	assert.Equal(t, fuse.CAWAOperatorID, op.ID())

	_, err = resolveOperator("bayesian")
	require.Error(t, err)
}

func TestReadJudgment_Valid(t *testing.T) {
	path := writeFile(t, "judgment.json", `{"T": 0.8, "I": 0.2, "F": 0.0}`)

	j, err := readJudgment(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, j.T)
	assert.Equal(t, 0.2, j.I)
	assert.Equal(t, 0.0, j.F)
}

func TestReadJudgment_RejectsInvalid(t *testing.T) {
	path := writeFile(t, "judgment.json", `{"T": 1.5, "I": 0.0, "F": 0.0}`)

	_, err := readJudgment(path)
	require.Error(t, err)
	assert.True(t, judgment.IsValidationError(err))
}

func TestReadJudgmentLoose_AcceptsInvalid(t *testing.T) {
	path := writeFile(t, "judgment.json", `{"T": 1.5, "I": 0.0, "F": 0.0}`)

	j, err := readJudgmentLoose(path)
	require.NoError(t, err, "loose reads defer classification to the verifier")
	assert.Equal(t, 1.5, j.T)
}

func TestReadJudgments_ValidatesEachElement(t *testing.T) {
	path := writeFile(t, "judgments.json", `[
		{"T": 0.8, "I": 0.2, "F": 0.0},
		{"T": 0.9, "I": 0.3, "F": 0.3}
	]`)

	_, err := readJudgments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "judgment 1")
	assert.True(t, judgment.IsValidationError(err))
}

func TestOutputInputError_Classification(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		_, readErr := readJudgment("/nonexistent/judgment.json")
		require.Error(t, readErr)

		err := outputInputError(formatter, readErr)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, buf.String(), ErrCodeNotFound)
	})

	t.Run("invalid_judgment", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		path := writeFile(t, "judgment.json", `{"T": 1.5, "I": 0.0, "F": 0.0}`)
		_, readErr := readJudgment(path)
		require.Error(t, readErr)

		err := outputInputError(formatter, readErr)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, buf.String(), ErrCodeInvalidJudgment)
	})

	t.Run("syntax_error", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		path := writeFile(t, "judgment.json", `{not json`)
		_, readErr := readJudgment(path)
		require.Error(t, readErr)

		err := outputInputError(formatter, readErr)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, buf.String(), ErrCodeParseFailed)
	})
}
