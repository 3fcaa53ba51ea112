package judgment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDecisionID = strings.Repeat("ab", 32)

func TestOutcomeTypeValid(t *testing.T) {
	for _, typ := range []OutcomeType{OutcomeSuccess, OutcomeFailure, OutcomePartial, OutcomeUnknown} {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, OutcomeType("MAYBE").Valid())
	assert.False(t, OutcomeType("success").Valid(), "outcome types are uppercase")
}

func TestParseOutcomeType(t *testing.T) {
	typ, err := ParseOutcomeType("SUCCESS")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, typ)

	_, err = ParseOutcomeType("whatever")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestOutcomeValidate(t *testing.T) {
	base, err := New(1, 0, 0, []ProvenanceEntry{
		{SourceID: "trading-oracle", Timestamp: "2023-01-02T00:00:00Z"},
	})
	require.NoError(t, err)

	o := Outcome{
		Judgment:          base,
		LinksToJudgmentID: testDecisionID,
		OutcomeType:       OutcomeSuccess,
		OracleSource:      "trading-oracle",
	}
	assert.NoError(t, o.Validate())

	bad := o
	bad.LinksToJudgmentID = "not-a-digest"
	assert.Error(t, bad.Validate())

	bad = o
	bad.OutcomeType = "MAYBE"
	assert.Error(t, bad.Validate())

	bad = o
	bad.OracleSource = ""
	assert.Error(t, bad.Validate())
}

func TestOutcomeWireFormat(t *testing.T) {
	base, err := New(1, 0, 0, []ProvenanceEntry{
		{SourceID: "trading-oracle", Timestamp: "2023-01-02T00:00:00Z"},
	})
	require.NoError(t, err)

	o := Outcome{
		Judgment:          base,
		LinksToJudgmentID: testDecisionID,
		OutcomeType:       OutcomeSuccess,
		OracleSource:      "trading-oracle",
	}

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "T")
	assert.Contains(t, raw, "provenance_chain")
	assert.Contains(t, raw, "links_to_judgment_id")
	assert.Contains(t, raw, "outcome_type")
	assert.Contains(t, raw, "oracle_source")

	parsed, err := ParseOutcome(data)
	require.NoError(t, err)
	assert.Equal(t, o, parsed)
}
