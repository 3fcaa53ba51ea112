package journal

import (
	"context"
	"fmt"
	"math"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// Verdict grades one decision/outcome pair.
type Verdict string

const (
	VerdictWellCalibrated Verdict = "WELL_CALIBRATED"
	VerdictUnderconfident Verdict = "UNDERCONFIDENT"
	VerdictOverconfident  Verdict = "OVERCONFIDENT"
	VerdictNeutral        Verdict = "NEUTRAL"
)

// Verdict bands over the decision's T. Outcome T is compared exactly:
// oracles report binary results as 1 and 0, and graded outcomes fall
// through to neutral.
const (
	confidentT = 0.7
	hesitantT  = 0.5
	certainT   = 0.8
)

// grade applies the calibration rule to one pair: a confident decision
// (T > 0.7) whose outcome came true is well calibrated, a hesitant one
// (T <= 0.5) whose outcome came true is underconfident, a near-certain
// one (T > 0.8) whose outcome failed is overconfident.
func grade(decisionT, outcomeT float64) Verdict {
	switch {
	case decisionT > confidentT && outcomeT == 1.0:
		return VerdictWellCalibrated
	case decisionT <= hesitantT && outcomeT == 1.0:
		return VerdictUnderconfident
	case decisionT > certainT && outcomeT == 0.0:
		return VerdictOverconfident
	default:
		return VerdictNeutral
	}
}

// CalibrationRow is one graded decision/outcome pair.
type CalibrationRow struct {
	DecisionID   string               `json:"decision_id"`
	OutcomeID    string               `json:"outcome_id"`
	DecisionT    float64              `json:"decision_t"`
	OutcomeT     float64              `json:"outcome_t"`
	Delta        float64              `json:"delta"`
	OutcomeType  judgment.OutcomeType `json:"outcome_type"`
	OracleSource string               `json:"oracle_source"`
	Verdict      Verdict              `json:"verdict"`
}

// CalibrationReport aggregates graded pairs.
type CalibrationReport struct {
	Rows         []CalibrationRow `json:"rows"`
	Total        int              `json:"total"`
	Verdicts     map[Verdict]int  `json:"verdicts"`
	MeanAbsDelta float64          `json:"mean_abs_delta"`
}

// Calibrate joins journaled outcomes to the decisions they link to
// and grades each pair. Delta is decision T minus outcome T: positive
// means the decision claimed more truth than the world delivered.
//
// Outcomes whose linked decision is not journaled are skipped - the
// link is a weak reference and the join simply finds no row.
func (j *Journal) Calibrate(ctx context.Context, filter CalibrationFilter) (CalibrationReport, error) {
	query, params := calibrationSQL(filter)

	rows, err := j.db.QueryContext(ctx, query, params...)
	if err != nil {
		return CalibrationReport{}, fmt.Errorf("calibrate: %w", err)
	}
	defer rows.Close()

	report := CalibrationReport{
		Rows:     []CalibrationRow{},
		Verdicts: make(map[Verdict]int),
	}
	var absDeltaSum float64

	for rows.Next() {
		var row CalibrationRow
		var outcomeType string
		if err := rows.Scan(
			&row.DecisionID, &row.DecisionT,
			&row.OutcomeID, &row.OutcomeT,
			&outcomeType, &row.OracleSource,
		); err != nil {
			return CalibrationReport{}, fmt.Errorf("calibrate: scan: %w", err)
		}
		row.OutcomeType = judgment.OutcomeType(outcomeType)
		row.Delta = row.DecisionT - row.OutcomeT
		row.Verdict = grade(row.DecisionT, row.OutcomeT)

		report.Rows = append(report.Rows, row)
		report.Verdicts[row.Verdict]++
		absDeltaSum += math.Abs(row.Delta)
	}
	if err := rows.Err(); err != nil {
		return CalibrationReport{}, fmt.Errorf("calibrate: iterate: %w", err)
	}

	report.Total = len(report.Rows)
	if report.Total > 0 {
		report.MeanAbsDelta = absDeltaSum / float64(report.Total)
	}

	return report, nil
}
