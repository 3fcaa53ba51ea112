package journal

import (
	"strings"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// CalibrationFilter narrows the decision/outcome pairs a calibration
// report covers. Zero-value fields are not filtered on.
type CalibrationFilter struct {
	// OracleSource keeps only outcomes reported by this oracle.
	OracleSource string

	// OutcomeType keeps only outcomes of this type.
	OutcomeType judgment.OutcomeType

	// DecisionID keeps only outcomes grading this decision.
	DecisionID string

	// Limit caps the number of rows. Zero means no cap.
	Limit int
}

// calibrationSQL compiles a filter into the pair-join query.
// Values are never interpolated - always ? placeholders. Every query
// carries the deterministic ORDER BY so reports are stable across
// runs.
func calibrationSQL(f CalibrationFilter) (string, []any) {
	var sb strings.Builder
	var params []any

	sb.WriteString(`
		SELECT d.judgment_id, d.t, o.judgment_id, o.t, o.outcome_type, o.oracle_source
		FROM outcomes o
		JOIN judgments d ON o.links_to_judgment_id = d.judgment_id
	`)

	var where []string
	if f.OracleSource != "" {
		where = append(where, "o.oracle_source = ?")
		params = append(params, f.OracleSource)
	}
	if f.OutcomeType != "" {
		where = append(where, "o.outcome_type = ?")
		params = append(params, string(f.OutcomeType))
	}
	if f.DecisionID != "" {
		where = append(where, "o.links_to_judgment_id = ?")
		params = append(params, f.DecisionID)
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	sb.WriteString(" ORDER BY o.token COLLATE BINARY ASC, o.judgment_id COLLATE BINARY ASC")

	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, f.Limit)
	}

	return sb.String(), params
}
