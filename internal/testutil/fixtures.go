// Package testutil provides shared judgment fixtures for internal
// package tests.
//
// Fixtures stamp fixed timestamps so content-addressed ids and seals
// are stable across runs; tests that pin digests rely on that.
package testutil

import (
	"testing"
	"time"

	"github.com/opentrustprotocol/otp-go/identity"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// BaseTime is the first timestamp Stamps hands out.
const BaseTime = "2023-06-01T00:00:00Z"

// Stamps returns a fixed timestamp source with n sequential instants,
// one second apart, starting at BaseTime.
func Stamps(t *testing.T, n int) *judgment.FixedTimestamps {
	t.Helper()
	base, err := time.Parse(time.RFC3339, BaseTime)
	if err != nil {
		t.Fatalf("parse base time: %v", err)
	}
	stamps := make([]string, n)
	for i := range stamps {
		stamps[i] = base.Add(time.Duration(i) * time.Second).UTC().Format(time.RFC3339)
	}
	return judgment.NewFixedTimestamps(stamps...)
}

// MustJudgment builds a judgment with a single provenance entry and no
// id.
func MustJudgment(t *testing.T, tv, iv, fv float64, sourceID string) judgment.Judgment {
	t.Helper()
	j, err := judgment.New(tv, iv, fv, []judgment.ProvenanceEntry{{
		SourceID:  sourceID,
		Timestamp: BaseTime,
	}})
	if err != nil {
		t.Fatalf("build judgment (%g, %g, %g): %v", tv, iv, fv, err)
	}
	return j
}

// MustDecision builds a judgment that carries its content-addressed
// id, as a journaled decision would.
func MustDecision(t *testing.T, tv, iv, fv float64, sourceID string) judgment.Judgment {
	t.Helper()
	assigner := identity.Assigner{Timestamps: Stamps(t, 1)}
	d, err := assigner.EnsureJudgmentID(MustJudgment(t, tv, iv, fv, sourceID))
	if err != nil {
		t.Fatalf("assign judgment id: %v", err)
	}
	return d
}

// MustOutcome builds an outcome linked to the given decision id.
func MustOutcome(t *testing.T, linksTo string, tv, iv, fv float64, outcomeType judgment.OutcomeType, oracleSource string) judgment.Outcome {
	t.Helper()
	assigner := identity.Assigner{Timestamps: Stamps(t, 2)}
	o, err := assigner.NewOutcome(linksTo, tv, iv, fv, outcomeType, oracleSource)
	if err != nil {
		t.Fatalf("build outcome for %s: %v", linksTo, err)
	}
	return o
}

// ThreeSensors returns the standard three-source fixture: a strong
// positive, a hedged positive, and a near-certain positive reading.
func ThreeSensors(t *testing.T) []judgment.Judgment {
	t.Helper()
	return []judgment.Judgment{
		MustJudgment(t, 0.8, 0.2, 0.0, "sensor1"),
		MustJudgment(t, 0.6, 0.3, 0.1, "sensor2"),
		MustJudgment(t, 0.9, 0.05, 0.05, "sensor3"),
	}
}
