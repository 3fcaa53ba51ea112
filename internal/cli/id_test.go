package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrustprotocol/otp-go/identity"
	"github.com/opentrustprotocol/otp-go/internal/testutil"
	"github.com/opentrustprotocol/otp-go/judgment"
)

func TestIDCommand_MatchesLibrary(t *testing.T) {
	j := testutil.MustJudgment(t, 0.8, 0.2, 0.0, "sensor1")
	path := writeJudgmentFile(t, j)

	want, err := identity.GenerateJudgmentID(j)
	require.NoError(t, err)

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewIDCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, want, strings.TrimSpace(buf.String()))
	assert.True(t, judgment.IsDigest(want))
}

func TestIDCommand_JSONOutput(t *testing.T) {
	j := testutil.MustJudgment(t, 0.8, 0.2, 0.0, "sensor1")
	path := writeJudgmentFile(t, j)

	rootOpts := &RootOptions{Format: "json"}
	cmd := NewIDCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var result IDResult
	decodeData(t, resp.Data, &result)
	assert.True(t, judgment.IsDigest(result.JudgmentID))
}

func TestIDCommand_Ensure(t *testing.T) {
	j := testutil.MustJudgment(t, 0.8, 0.2, 0.0, "sensor1")
	path := writeJudgmentFile(t, j)

	rootOpts := &RootOptions{Format: "json"}
	cmd := NewIDCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--ensure", path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))

	var withID judgment.Judgment
	decodeData(t, resp.Data, &withID)

	id := withID.JudgmentID()
	require.NotEmpty(t, id)

	// The identity entry does not change the id it reports.
	want, err := identity.GenerateJudgmentID(j)
	require.NoError(t, err)
	assert.Equal(t, want, id)
	assert.Len(t, withID.Chain, len(j.Chain)+1)
}

func TestIDCommand_InvalidJudgment(t *testing.T) {
	path := writeFile(t, "judgment.json", `{"T": 0.6, "I": 0.1, "F": 0.1}`)

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewIDCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeInvalidJudgment)
}

func TestIDCommand_MissingFile(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewIDCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/judgment.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeNotFound)
}
