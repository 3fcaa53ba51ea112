package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// writeFile writes content to a fresh temp file and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeJudgmentsFile marshals judgments to a temp file.
func writeJudgmentsFile(t *testing.T, judgments []judgment.Judgment) string {
	t.Helper()
	data, err := json.Marshal(judgments)
	require.NoError(t, err)
	return writeFile(t, "judgments.json", string(data))
}

// writeJudgmentFile marshals a single judgment to a temp file.
func writeJudgmentFile(t *testing.T, j judgment.Judgment) string {
	t.Helper()
	data, err := json.Marshal(j)
	require.NoError(t, err)
	return writeFile(t, "judgment.json", string(data))
}

// decodeData re-decodes a CLIResponse data payload into out.
func decodeData(t *testing.T, data interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// validMapperCUE is a mapper directory fixture with one definition of
// each type.
const validMapperCUE = `
package mappers

mapper: health: {
	id:                  "defi-health-factor"
	type:                "numerical"
	falsity_point:       1.0
	indeterminacy_point: 1.5
	truth_point:         3.0
}

mapper: kyc: {
	id:   "kyc-verification"
	type: "categorical"
	mappings: {
		VERIFIED: {T: 1.0, I: 0.0, F: 0.0}
		PENDING:  {T: 0.0, I: 1.0, F: 0.0}
		REJECTED: {T: 0.0, I: 0.0, F: 1.0}
	}
	default: {T: 0.0, I: 0.0, F: 1.0}
}

mapper: ssl: {
	id:   "ssl-certificate-valid"
	type: "boolean"
	true_map: {T: 0.9, I: 0.1, F: 0.0}
	false_map: {T: 0.0, I: 0.0, F: 1.0}
}
`

// writeMapperDir writes CUE sources into a fresh temp directory.
func writeMapperDir(t *testing.T, sources map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}
