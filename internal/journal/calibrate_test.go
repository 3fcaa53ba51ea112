package journal

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/opentrustprotocol/otp-go/internal/testutil"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// calibrationSeed holds the decision ids of the four graded pairs, one
// per verdict band.
type calibrationSeed struct {
	wellCalibrated string
	underconfident string
	overconfident  string
	neutral        string
}

// seedCalibration records four decision/outcome pairs chosen so each
// lands in a different verdict band. Tokens are pinned so record order
// is deterministic: pairs appear in the field order of calibrationSeed.
func seedCalibration(t *testing.T) (*Journal, calibrationSeed) {
	t.Helper()

	j := createTestJournalWith(t, Config{
		Tokens: NewFixedTokens("t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"),
	})

	pairs := []struct {
		decision judgment.Judgment
		outcome  func(linksTo string) judgment.Outcome
	}{
		{
			// Confident and right.
			decision: testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1"),
			outcome: func(linksTo string) judgment.Outcome {
				return testutil.MustOutcome(t, linksTo, 1.0, 0.0, 0.0, judgment.OutcomeSuccess, "settlement-oracle")
			},
		},
		{
			// Hesitant but right.
			decision: testutil.MustDecision(t, 0.4, 0.4, 0.2, "sensor1"),
			outcome: func(linksTo string) judgment.Outcome {
				return testutil.MustOutcome(t, linksTo, 1.0, 0.0, 0.0, judgment.OutcomeSuccess, "settlement-oracle")
			},
		},
		{
			// Near certain and wrong.
			decision: testutil.MustDecision(t, 0.9, 0.05, 0.05, "sensor2"),
			outcome: func(linksTo string) judgment.Outcome {
				return testutil.MustOutcome(t, linksTo, 0.0, 0.0, 1.0, judgment.OutcomeFailure, "risk-oracle")
			},
		},
		{
			// In the gap between hesitant and confident.
			decision: testutil.MustDecision(t, 0.6, 0.3, 0.1, "sensor2"),
			outcome: func(linksTo string) judgment.Outcome {
				return testutil.MustOutcome(t, linksTo, 1.0, 0.0, 0.0, judgment.OutcomeSuccess, "settlement-oracle")
			},
		},
	}

	var ids []string
	for _, p := range pairs {
		if _, _, err := j.RecordJudgment(context.Background(), p.decision); err != nil {
			t.Fatalf("RecordJudgment() failed: %v", err)
		}
		if _, _, err := j.RecordOutcome(context.Background(), p.outcome(p.decision.JudgmentID())); err != nil {
			t.Fatalf("RecordOutcome() failed: %v", err)
		}
		ids = append(ids, p.decision.JudgmentID())
	}

	return j, calibrationSeed{
		wellCalibrated: ids[0],
		underconfident: ids[1],
		overconfident:  ids[2],
		neutral:        ids[3],
	}
}

func TestCalibrate_GradesEachBand(t *testing.T) {
	j, seed := seedCalibration(t)

	report, err := j.Calibrate(context.Background(), CalibrationFilter{})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}

	if report.Total != 4 {
		t.Fatalf("Total = %d, expected 4", report.Total)
	}

	wantVerdicts := map[string]Verdict{
		seed.wellCalibrated: VerdictWellCalibrated,
		seed.underconfident: VerdictUnderconfident,
		seed.overconfident:  VerdictOverconfident,
		seed.neutral:        VerdictNeutral,
	}
	for _, row := range report.Rows {
		want, ok := wantVerdicts[row.DecisionID]
		if !ok {
			t.Errorf("unexpected decision %s in report", row.DecisionID)
			continue
		}
		if row.Verdict != want {
			t.Errorf("decision %s graded %s, expected %s", row.DecisionID, row.Verdict, want)
		}
		if !almostEqual(row.Delta, row.DecisionT-row.OutcomeT) {
			t.Errorf("decision %s: Delta = %v, expected %v", row.DecisionID, row.Delta, row.DecisionT-row.OutcomeT)
		}
	}

	if len(report.Verdicts) != 4 {
		t.Errorf("Verdicts has %d buckets, expected 4: %v", len(report.Verdicts), report.Verdicts)
	}
	for verdict, count := range report.Verdicts {
		if count != 1 {
			t.Errorf("Verdicts[%s] = %d, expected 1", verdict, count)
		}
	}

	// |0.8-1| + |0.4-1| + |0.9-0| + |0.6-1| over four pairs.
	if !almostEqual(report.MeanAbsDelta, 0.525) {
		t.Errorf("MeanAbsDelta = %v, expected 0.525", report.MeanAbsDelta)
	}
}

func TestCalibrate_SkipsUnlinkedOutcomes(t *testing.T) {
	j := createTestJournal(t)

	// The linked decision never gets journaled, so the join finds no
	// pair for this outcome.
	phantom := testutil.MustDecision(t, 0.8, 0.2, 0.0, "sensor1")
	o := testutil.MustOutcome(t, phantom.JudgmentID(), 1.0, 0.0, 0.0, judgment.OutcomeSuccess, "settlement-oracle")
	if _, _, err := j.RecordOutcome(context.Background(), o); err != nil {
		t.Fatalf("RecordOutcome() failed: %v", err)
	}

	report, err := j.Calibrate(context.Background(), CalibrationFilter{})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}
	if report.Total != 0 {
		t.Errorf("Total = %d, expected 0 (unlinked outcome must be skipped)", report.Total)
	}
}

func TestCalibrate_FilterByOracleSource(t *testing.T) {
	j, seed := seedCalibration(t)

	report, err := j.Calibrate(context.Background(), CalibrationFilter{OracleSource: "risk-oracle"})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}
	if report.Total != 1 {
		t.Fatalf("Total = %d, expected 1", report.Total)
	}
	if report.Rows[0].DecisionID != seed.overconfident {
		t.Errorf("filtered to decision %s, expected %s", report.Rows[0].DecisionID, seed.overconfident)
	}
	if report.Rows[0].OracleSource != "risk-oracle" {
		t.Errorf("OracleSource = %s, expected risk-oracle", report.Rows[0].OracleSource)
	}
}

func TestCalibrate_FilterByOutcomeType(t *testing.T) {
	j, seed := seedCalibration(t)

	report, err := j.Calibrate(context.Background(), CalibrationFilter{OutcomeType: judgment.OutcomeFailure})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}
	if report.Total != 1 {
		t.Fatalf("Total = %d, expected 1", report.Total)
	}
	if report.Rows[0].DecisionID != seed.overconfident {
		t.Errorf("filtered to decision %s, expected %s", report.Rows[0].DecisionID, seed.overconfident)
	}
}

func TestCalibrate_FilterByDecisionID(t *testing.T) {
	j, seed := seedCalibration(t)

	report, err := j.Calibrate(context.Background(), CalibrationFilter{DecisionID: seed.underconfident})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}
	if report.Total != 1 {
		t.Fatalf("Total = %d, expected 1", report.Total)
	}
	if report.Rows[0].Verdict != VerdictUnderconfident {
		t.Errorf("Verdict = %s, expected %s", report.Rows[0].Verdict, VerdictUnderconfident)
	}
}

func TestCalibrate_Limit(t *testing.T) {
	j, seed := seedCalibration(t)

	report, err := j.Calibrate(context.Background(), CalibrationFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}
	if report.Total != 2 {
		t.Fatalf("Total = %d, expected 2", report.Total)
	}
	// Record order: the first two pairs journaled.
	if report.Rows[0].DecisionID != seed.wellCalibrated {
		t.Errorf("Rows[0] grades %s, expected %s", report.Rows[0].DecisionID, seed.wellCalibrated)
	}
	if report.Rows[1].DecisionID != seed.underconfident {
		t.Errorf("Rows[1] grades %s, expected %s", report.Rows[1].DecisionID, seed.underconfident)
	}
}

func TestCalibrate_EmptyJournal(t *testing.T) {
	j := createTestJournal(t)

	report, err := j.Calibrate(context.Background(), CalibrationFilter{})
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}
	if report.Total != 0 {
		t.Errorf("Total = %d, expected 0", report.Total)
	}
	if report.Rows == nil || len(report.Rows) != 0 {
		t.Errorf("Rows = %v, expected an empty slice", report.Rows)
	}
	if report.MeanAbsDelta != 0 {
		t.Errorf("MeanAbsDelta = %v, expected 0", report.MeanAbsDelta)
	}
}

func TestGrade_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		decisionT float64
		outcomeT  float64
		want      Verdict
	}{
		{"confident and right", 0.71, 1.0, VerdictWellCalibrated},
		{"exactly at the confident bound", 0.7, 1.0, VerdictNeutral},
		{"exactly at the hesitant bound", 0.5, 1.0, VerdictUnderconfident},
		{"just above the hesitant bound", 0.51, 1.0, VerdictNeutral},
		{"exactly at the certain bound", 0.8, 0.0, VerdictNeutral},
		{"just above the certain bound", 0.81, 0.0, VerdictOverconfident},
		{"zero trust vindicated", 0.0, 1.0, VerdictUnderconfident},
		{"zero trust refuted", 0.0, 0.0, VerdictNeutral},
		{"graded outcome falls through", 0.9, 0.5, VerdictNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grade(tt.decisionT, tt.outcomeT); got != tt.want {
				t.Errorf("grade(%v, %v) = %s, expected %s", tt.decisionT, tt.outcomeT, got, tt.want)
			}
		})
	}
}

func TestCalibrationSQL_Placeholders(t *testing.T) {
	query, params := calibrationSQL(CalibrationFilter{
		OracleSource: "settlement-oracle",
		OutcomeType:  judgment.OutcomeSuccess,
		DecisionID:   "abc",
		Limit:        5,
	})

	wantParams := []any{"settlement-oracle", "SUCCESS", "abc", 5}
	if !reflect.DeepEqual(params, wantParams) {
		t.Errorf("params = %v, expected %v", params, wantParams)
	}
	// Values ride as parameters, never inside the SQL text.
	if strings.Contains(query, "settlement-oracle") || strings.Contains(query, "abc") {
		t.Errorf("query interpolates a value:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY o.token COLLATE BINARY ASC") {
		t.Errorf("query lacks the deterministic ORDER BY:\n%s", query)
	}
}

func TestCalibrationSQL_EmptyFilter(t *testing.T) {
	query, params := calibrationSQL(CalibrationFilter{})

	if len(params) != 0 {
		t.Errorf("params = %v, expected none", params)
	}
	if strings.Contains(query, "WHERE") {
		t.Errorf("empty filter produced a WHERE clause:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY o.token COLLATE BINARY ASC") {
		t.Errorf("query lacks the deterministic ORDER BY:\n%s", query)
	}
}
