package fuse

import "github.com/opentrustprotocol/otp-go/judgment"

// ConflictAwareWeightedAverage fuses judgments under raw weights with
// the conflict-aware weighted average operator, stamping provenance
// with system time. Use NewCAWA to control timestamps.
func ConflictAwareWeightedAverage(judgments []judgment.Judgment, weights []float64) (judgment.Judgment, error) {
	return NewCAWA(nil).Fuse(judgments, weights)
}

// Optimistic fuses judgments with the best-case operator, stamping
// provenance with system time. Use NewOptimistic to control
// timestamps.
func Optimistic(judgments []judgment.Judgment) (judgment.Judgment, error) {
	return NewOptimistic(nil).Fuse(judgments, nil)
}

// Pessimistic fuses judgments with the worst-case operator, stamping
// provenance with system time. Use NewPessimistic to control
// timestamps.
func Pessimistic(judgments []judgment.Judgment) (judgment.Judgment, error) {
	return NewPessimistic(nil).Fuse(judgments, nil)
}
