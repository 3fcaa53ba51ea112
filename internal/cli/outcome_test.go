package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrustprotocol/otp-go/internal/journal"
	"github.com/opentrustprotocol/otp-go/internal/testutil"
	"github.com/opentrustprotocol/otp-go/judgment"
)

func runOutcomeCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	rootOpts := &RootOptions{Format: format}
	cmd := NewOutcomeCommand(rootOpts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestOutcomeCommand_TextOutput(t *testing.T) {
	decisionID := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1").JudgmentID()

	output, err := runOutcomeCommand(t, "text",
		"--links-to", decisionID, "--type", "success", "--oracle", "settlement-oracle")
	require.NoError(t, err)

	assert.Contains(t, output, "T=1 I=0 F=0")
	assert.Contains(t, output, "outcome_type: SUCCESS")
	assert.Contains(t, output, "oracle_source: settlement-oracle")
	assert.Contains(t, output, "links_to: "+decisionID)
	assert.Contains(t, output, "judgment_id: ")
}

func TestOutcomeCommand_JSONOutput(t *testing.T) {
	decisionID := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1").JudgmentID()

	output, err := runOutcomeCommand(t, "json",
		"--links-to", decisionID, "--type", "FAILURE", "--oracle", "risk-oracle",
		"--t", "0", "--f", "1")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)

	var o judgment.Outcome
	decodeData(t, resp.Data, &o)
	assert.Equal(t, judgment.OutcomeFailure, o.OutcomeType)
	assert.Equal(t, decisionID, o.LinksToJudgmentID)
	assert.Equal(t, 0.0, o.T)
	assert.Equal(t, 1.0, o.F)
	assert.True(t, judgment.IsDigest(o.JudgmentID()))
}

func TestOutcomeCommand_TypeCaseInsensitive(t *testing.T) {
	decisionID := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1").JudgmentID()

	for _, typ := range []string{"partial", "Partial", "PARTIAL"} {
		output, err := runOutcomeCommand(t, "text",
			"--links-to", decisionID, "--type", typ, "--oracle", "settlement-oracle",
			"--t", "0.5", "--i", "0.3", "--f", "0.2")
		require.NoError(t, err, "type %q", typ)
		assert.Contains(t, output, "outcome_type: PARTIAL")
	}
}

func TestOutcomeCommand_BadType(t *testing.T) {
	decisionID := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1").JudgmentID()

	output, err := runOutcomeCommand(t, "text",
		"--links-to", decisionID, "--type", "flaky", "--oracle", "settlement-oracle")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, ErrCodeParseFailed)
}

func TestOutcomeCommand_ConservationViolation(t *testing.T) {
	decisionID := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1").JudgmentID()

	output, err := runOutcomeCommand(t, "text",
		"--links-to", decisionID, "--type", "success", "--oracle", "settlement-oracle",
		"--t", "0.5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, ErrCodeInvalidJudgment)
}

func TestOutcomeCommand_BadLinkID(t *testing.T) {
	output, err := runOutcomeCommand(t, "text",
		"--links-to", "not-a-digest", "--type", "success", "--oracle", "settlement-oracle")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, ErrCodeInvalidJudgment)
}

func TestOutcomeCommand_Journal(t *testing.T) {
	decisionID := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1").JudgmentID()
	dbPath := filepath.Join(t.TempDir(), "otp.db")

	output, err := runOutcomeCommand(t, "json",
		"--links-to", decisionID, "--type", "success", "--oracle", "settlement-oracle",
		"--journal", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	var o judgment.Outcome
	decodeData(t, resp.Data, &o)

	j, err := journal.Open(dbPath, journal.Config{})
	require.NoError(t, err)
	defer j.Close()

	stored, err := j.GetOutcome(context.Background(), o.JudgmentID())
	require.NoError(t, err)
	assert.Equal(t, decisionID, stored.LinksToJudgmentID)
	assert.Equal(t, judgment.OutcomeSuccess, stored.OutcomeType)
}
