package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrustprotocol/otp-go/fuse"
	"github.com/opentrustprotocol/otp-go/internal/testutil"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

func TestSealCommand_MatchesLibrary(t *testing.T) {
	inputs := testutil.ThreeSensors(t)
	path := writeJudgmentsFile(t, inputs)

	want, err := seal.Generate(inputs, []float64{0.4, 0.3, 0.3}, fuse.CAWAOperatorID)
	require.NoError(t, err)

	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSealCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--weights", "0.4,0.3,0.3", path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	var result SealResult
	decodeData(t, resp.Data, &result)

	assert.Equal(t, fuse.CAWAOperatorID, result.OperatorID)
	assert.Equal(t, want, result.Seal)
	assert.True(t, judgment.IsDigest(result.Seal))
	assert.Empty(t, result.Payload)
}

func TestSealCommand_TextOutput(t *testing.T) {
	path := writeJudgmentsFile(t, testutil.ThreeSensors(t))

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSealCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--op", "pessimistic", path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "operator: "+fuse.PessimisticOperatorID)
	assert.Contains(t, output, "seal: ")
	assert.NotContains(t, output, "payload:")
}

func TestSealCommand_ShowPayload(t *testing.T) {
	path := writeJudgmentsFile(t, testutil.ThreeSensors(t))

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSealCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--op", "optimistic", "--show-payload", path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "payload: ")
	assert.Contains(t, output, `"operator_id":"`+fuse.OptimisticOperatorID+`"`, "payload embeds the operator id")
}

func TestSealCommand_WeightsChangeDigest(t *testing.T) {
	inputs := testutil.ThreeSensors(t)
	path := writeJudgmentsFile(t, inputs)

	run := func(args ...string) string {
		rootOpts := &RootOptions{Format: "json"}
		cmd := NewSealCommand(rootOpts)
		buf := &bytes.Buffer{}
		cmd.SetOut(buf)
		cmd.SetArgs(append(args, path))
		require.NoError(t, cmd.Execute())

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		var result SealResult
		decodeData(t, resp.Data, &result)
		return result.Seal
	}

	weighted := run("--weights", "1,1,1")
	unweighted := run()
	assert.NotEqual(t, weighted, unweighted, "sealed weights are the raw values as passed")

	// Same invocation reproduces the same digest.
	assert.Equal(t, weighted, run("--weights", "1,1,1"))
}

func TestSealCommand_UnknownOperator(t *testing.T) {
	path := writeJudgmentsFile(t, testutil.ThreeSensors(t))

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSealCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--op", "median", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeBadOperator)
}

func TestSealCommand_InvalidJudgment(t *testing.T) {
	path := writeFile(t, "judgments.json", `[{"T": 0.5, "I": 0.5, "F": 0.5}]`)

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSealCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeInvalidJudgment)
}
