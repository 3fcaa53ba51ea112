package identity

import (
	"github.com/opentrustprotocol/otp-go/canonical"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

// SourceID tags provenance entries appended by identity assignment.
// The version suffix enables future id-algorithm migration.
const SourceID = "otp-identity-v1"

// GenerateJudgmentID computes the content-addressed id of a judgment:
// the protocol digest of its canonical encoding with all judgment_id
// fields stripped from the chain. Pure: computing an id never modifies
// or stamps the judgment.
func GenerateJudgmentID(j judgment.Judgment) (string, error) {
	stripped := judgment.Judgment{T: j.T, I: j.I, F: j.F, Chain: stripIDs(j.Chain)}
	payload, err := canonical.EncodeJudgment(stripped)
	if err != nil {
		return "", err
	}
	return seal.Sum(payload), nil
}

// Assigner stamps identity entries onto judgments and outcomes.
//
// The zero value stamps from the system clock; tests inject a fixed
// TimestampSource for reproducible chains.
type Assigner struct {
	Timestamps judgment.TimestampSource
}

// EnsureJudgmentID returns a judgment that carries an id.
//
// Idempotent: if any chain entry already has a judgment_id, the
// judgment is returned unchanged - no recomputation, no duplicate
// entry. Otherwise the id is computed and a new entry
// {source_id: "otp-identity-v1", timestamp, judgment_id} is appended.
func (a Assigner) EnsureJudgmentID(j judgment.Judgment) (judgment.Judgment, error) {
	if j.JudgmentID() != "" {
		return j, nil
	}
	id, err := GenerateJudgmentID(j)
	if err != nil {
		return judgment.Judgment{}, err
	}
	return j.Appended(judgment.ProvenanceEntry{
		SourceID:   SourceID,
		Timestamp:  a.now(),
		JudgmentID: id,
	})
}

func (a Assigner) now() string {
	if a.Timestamps == nil {
		return judgment.SystemTimestamps{}.Now()
	}
	return a.Timestamps.Now()
}

// EnsureJudgmentID assigns an id using the system clock for the
// identity entry's timestamp. See Assigner.EnsureJudgmentID.
func EnsureJudgmentID(j judgment.Judgment) (judgment.Judgment, error) {
	return Assigner{}.EnsureJudgmentID(j)
}

// stripIDs copies a chain with every JudgmentID field cleared. Entries
// themselves are kept: an identity entry's source_id and timestamp are
// real history, only the id value is excluded from hashing.
func stripIDs(chain []judgment.ProvenanceEntry) []judgment.ProvenanceEntry {
	if len(chain) == 0 {
		return nil
	}
	out := make([]judgment.ProvenanceEntry, len(chain))
	for i, e := range chain {
		e.JudgmentID = ""
		out[i] = e
	}
	return out
}
