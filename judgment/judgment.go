package judgment

import (
	"encoding/json"
	"fmt"
	"math"
)

// ConservationEpsilon is the tolerance for the conservation invariant
// |T+I+F-1| on construction, and for component equality during
// conformance verification.
const ConservationEpsilon = 1e-9

// Judgment is an immutable neutrosophic evidence assessment.
//
// T, I, and F hold the truth, indeterminacy, and falsity mass; each lies
// in [0,1] and together they sum to 1 within ConservationEpsilon. Chain
// records the operations that produced the judgment, oldest first.
//
// Treat a Judgment as a value: constructors and operators validate on
// construction and extend chains by allocating new slices. Callers must
// not mutate Chain after construction - fusing the same judgment into
// several outputs relies on the inputs staying untouched.
type Judgment struct {
	T float64 `json:"T"`
	I float64 `json:"I"`
	F float64 `json:"F"`

	Chain []ProvenanceEntry `json:"provenance_chain"`
}

// ProvenanceEntry is one immutable step in a judgment's history.
// "Updating" a chain means producing a new chain with one more entry.
type ProvenanceEntry struct {
	// SourceID identifies the origin or operator: a mapper id for initial
	// judgments, a versioned operator id for fused ones.
	SourceID string `json:"source_id"`

	// Timestamp is an RFC 3339 UTC instant recorded when the entry was made.
	Timestamp string `json:"timestamp,omitempty"`

	// Metadata carries optional scalar annotations.
	Metadata Metadata `json:"metadata,omitempty"`

	// ConformanceSeal is set only on entries produced by a fusion operator:
	// 64 lowercase hex chars, SHA-256 over the canonical inputs + operator id.
	ConformanceSeal string `json:"conformance_seal,omitempty"`

	// JudgmentID is set only on identity entries: the content-addressed
	// id of the judgment the entry belongs to.
	JudgmentID string `json:"judgment_id,omitempty"`
}

// New constructs a validated Judgment. The chain slice is copied, so the
// caller's slice stays independent of the returned value.
func New(t, i, f float64, chain []ProvenanceEntry) (Judgment, error) {
	if err := ValidateTriple(t, i, f); err != nil {
		return Judgment{}, err
	}
	if err := validateChain(chain); err != nil {
		return Judgment{}, err
	}
	return Judgment{T: t, I: i, F: f, Chain: cloneChain(chain)}, nil
}

// ValidateTriple checks the range and conservation invariants for a
// (T, I, F) triple without constructing a judgment.
func ValidateTriple(t, i, f float64) error {
	for _, c := range [...]struct {
		name  string
		value float64
	}{{"T", t}, {"I", i}, {"F", f}} {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return newValidationError(ErrCodeOutOfRange, c.name, "%s must be finite, got %v", c.name, c.value)
		}
		if c.value < 0 || c.value > 1 {
			return newValidationError(ErrCodeOutOfRange, c.name, "%s must be in [0,1], got %v", c.name, c.value)
		}
	}

	if sum := t + i + f; math.Abs(sum-1) > ConservationEpsilon {
		return newValidationError(ErrCodeConservation, "",
			"T+I+F must equal 1 within %g, got %v", ConservationEpsilon, sum)
	}
	return nil
}

// Validate re-checks all construction invariants. Useful after decoding a
// judgment from an external source, which bypasses New.
func (j Judgment) Validate() error {
	if err := ValidateTriple(j.T, j.I, j.F); err != nil {
		return err
	}
	return validateChain(j.Chain)
}

func validateChain(chain []ProvenanceEntry) error {
	for idx, e := range chain {
		if e.SourceID == "" {
			return newValidationError(ErrCodeInvalidProvenance, "source_id",
				"provenance entry %d has no source_id", idx)
		}
		if e.ConformanceSeal != "" && !IsDigest(e.ConformanceSeal) {
			return newValidationError(ErrCodeInvalidDigest, "conformance_seal",
				"provenance entry %d: seal must be 64 lowercase hex chars", idx)
		}
		if e.JudgmentID != "" && !IsDigest(e.JudgmentID) {
			return newValidationError(ErrCodeInvalidDigest, "judgment_id",
				"provenance entry %d: judgment id must be 64 lowercase hex chars", idx)
		}
	}
	return nil
}

func cloneChain(chain []ProvenanceEntry) []ProvenanceEntry {
	if len(chain) == 0 {
		return nil
	}
	out := make([]ProvenanceEntry, len(chain))
	for i, e := range chain {
		e.Metadata = e.Metadata.Clone()
		out[i] = e
	}
	return out
}

// Appended returns a new judgment whose chain is this judgment's chain
// plus one entry. The receiver is not modified.
func (j Judgment) Appended(entry ProvenanceEntry) (Judgment, error) {
	chain := make([]ProvenanceEntry, 0, len(j.Chain)+1)
	chain = append(chain, j.Chain...)
	chain = append(chain, entry)
	return New(j.T, j.I, j.F, chain)
}

// JudgmentID returns the content-addressed id recorded in the chain, or
// "" if identity has not been assigned.
func (j Judgment) JudgmentID() string {
	for _, e := range j.Chain {
		if e.JudgmentID != "" {
			return e.JudgmentID
		}
	}
	return ""
}

// SealEntry returns the most recent provenance entry carrying a
// conformance seal. Identity assignment may append entries after the
// operator's sealed entry, so verification locates the seal by scanning
// backward rather than assuming it sits last.
func (j Judgment) SealEntry() (ProvenanceEntry, bool) {
	for i := len(j.Chain) - 1; i >= 0; i-- {
		if j.Chain[i].ConformanceSeal != "" {
			return j.Chain[i], true
		}
	}
	return ProvenanceEntry{}, false
}

// IsDigest reports whether s is a lowercase hex-encoded 256-bit digest:
// exactly 64 characters from [0-9a-f]. Seals and judgment ids share this
// format; anything else is invalid input, not a valid digest.
func IsDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Parse decodes and validates a single judgment from its JSON wire form.
func Parse(data []byte) (Judgment, error) {
	var j Judgment
	if err := json.Unmarshal(data, &j); err != nil {
		return Judgment{}, fmt.Errorf("parse judgment: %w", err)
	}
	if err := j.Validate(); err != nil {
		return Judgment{}, err
	}
	return j, nil
}

// ParseList decodes and validates a JSON array of judgments.
func ParseList(data []byte) ([]Judgment, error) {
	var js []Judgment
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("parse judgment list: %w", err)
	}
	for i, j := range js {
		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("judgment %d: %w", i, err)
		}
	}
	return js, nil
}
