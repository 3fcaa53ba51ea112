package seal

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/opentrustprotocol/otp-go/canonical"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// Sum computes the protocol digest of a canonical payload: SHA-256,
// hex-encoded lowercase, 64 characters. Every hash in the protocol
// (seals and judgment ids) goes through this one function.
func Sum(payload []byte) string {
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

// Generate computes the conformance seal for a fusion request: the
// digest of canonicalize(judgments, weights, operatorID). Pass nil
// weights for the unweighted operators.
//
// Generate is referentially transparent: identical inputs and operator
// id yield the identical hex string across calls, process restarts,
// and platforms. Fails with *canonical.EncodingError if any input has
// no canonical form.
func Generate(judgments []judgment.Judgment, weights []float64, operatorID string) (string, error) {
	payload, err := canonical.Canonicalize(judgments, weights, operatorID)
	if err != nil {
		return "", err
	}
	return Sum(payload), nil
}

// MustGenerate is like Generate but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustGenerate(judgments []judgment.Judgment, weights []float64, operatorID string) string {
	s, err := Generate(judgments, weights, operatorID)
	if err != nil {
		panic(err)
	}
	return s
}
