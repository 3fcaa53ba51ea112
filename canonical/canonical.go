package canonical

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// Canonicalize produces the canonical byte encoding of a fusion request:
// the input judgments in caller order, the caller's weights (omitted
// entirely when empty - the unweighted operators have no weights key),
// and the versioned operator id.
//
// The operator id doubles as a domain separator: payloads for different
// operators or protocol versions can never collide, so a seal generated
// under one operator id never validates under another.
//
// The weights are encoded exactly as passed, not normalized, so the
// resulting seal commits to the caller's request rather than to a
// derived quantity.
func Canonicalize(judgments []judgment.Judgment, weights []float64, operatorID string) ([]byte, error) {
	// Key order is fixed by the byte-lexicographic rule:
	// "judgments" < "operator_id" < "weights".
	buf := make([]byte, 0, 256)
	buf = append(buf, `{"judgments":[`...)
	var err error
	for i, j := range judgments {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf, err = appendJudgment(buf, j, fmt.Sprintf("judgments[%d]", i))
		if err != nil {
			return nil, err
		}
	}
	buf = append(buf, `],"operator_id":`...)
	buf, err = appendString(buf, operatorID)
	if err != nil {
		return nil, err
	}
	if len(weights) > 0 {
		buf = append(buf, `,"weights":[`...)
		for i, w := range weights {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf, err = appendNumber(buf, w, fmt.Sprintf("weights[%d]", i))
			if err != nil {
				return nil, err
			}
		}
		buf = append(buf, ']')
	}
	buf = append(buf, '}')
	return buf, nil
}

// EncodeJudgment returns the canonical encoding of a single judgment:
// {"F":…,"I":…,"T":…,"provenance_chain":[…]}. Judgment identity is
// computed over this form (with id fields stripped by the caller).
func EncodeJudgment(j judgment.Judgment) ([]byte, error) {
	return appendJudgment(nil, j, "judgment")
}

// EncodeOutcome returns the canonical encoding of an outcome judgment,
// which carries the back-reference and oracle fields alongside the
// judgment shape. Outcome identity is computed over this form.
func EncodeOutcome(o judgment.Outcome) ([]byte, error) {
	var err error
	buf := make([]byte, 0, 256)
	buf = append(buf, `{"F":`...)
	if buf, err = appendNumber(buf, o.F, "outcome.F"); err != nil {
		return nil, err
	}
	buf = append(buf, `,"I":`...)
	if buf, err = appendNumber(buf, o.I, "outcome.I"); err != nil {
		return nil, err
	}
	buf = append(buf, `,"T":`...)
	if buf, err = appendNumber(buf, o.T, "outcome.T"); err != nil {
		return nil, err
	}
	buf = append(buf, `,"links_to_judgment_id":`...)
	if buf, err = appendString(buf, o.LinksToJudgmentID); err != nil {
		return nil, err
	}
	buf = append(buf, `,"oracle_source":`...)
	if buf, err = appendString(buf, o.OracleSource); err != nil {
		return nil, err
	}
	buf = append(buf, `,"outcome_type":`...)
	if buf, err = appendString(buf, string(o.OutcomeType)); err != nil {
		return nil, err
	}
	buf = append(buf, `,"provenance_chain":`...)
	if buf, err = appendChain(buf, o.Chain, "outcome"); err != nil {
		return nil, err
	}
	buf = append(buf, '}')
	return buf, nil
}

func appendJudgment(dst []byte, j judgment.Judgment, path string) ([]byte, error) {
	var err error
	dst = append(dst, `{"F":`...)
	if dst, err = appendNumber(dst, j.F, path+".F"); err != nil {
		return nil, err
	}
	dst = append(dst, `,"I":`...)
	if dst, err = appendNumber(dst, j.I, path+".I"); err != nil {
		return nil, err
	}
	dst = append(dst, `,"T":`...)
	if dst, err = appendNumber(dst, j.T, path+".T"); err != nil {
		return nil, err
	}
	dst = append(dst, `,"provenance_chain":`...)
	if dst, err = appendChain(dst, j.Chain, path); err != nil {
		return nil, err
	}
	return append(dst, '}'), nil
}

func appendChain(dst []byte, chain []judgment.ProvenanceEntry, path string) ([]byte, error) {
	var err error
	dst = append(dst, '[')
	for i, e := range chain {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, err = appendEntry(dst, e, fmt.Sprintf("%s.provenance_chain[%d]", path, i))
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}

// appendEntry encodes one provenance entry. Only present fields are
// emitted, in byte-lexicographic key order: conformance_seal,
// judgment_id, metadata, source_id, timestamp.
func appendEntry(dst []byte, e judgment.ProvenanceEntry, path string) ([]byte, error) {
	var err error
	dst = append(dst, '{')
	first := true
	field := func(key string) {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = append(dst, '"')
		dst = append(dst, key...)
		dst = append(dst, `":`...)
	}

	if e.ConformanceSeal != "" {
		field("conformance_seal")
		if dst, err = appendString(dst, e.ConformanceSeal); err != nil {
			return nil, err
		}
	}
	if e.JudgmentID != "" {
		field("judgment_id")
		if dst, err = appendString(dst, e.JudgmentID); err != nil {
			return nil, err
		}
	}
	if len(e.Metadata) > 0 {
		field("metadata")
		if dst, err = appendMetadata(dst, e.Metadata, path+".metadata"); err != nil {
			return nil, err
		}
	}
	field("source_id")
	if dst, err = appendString(dst, e.SourceID); err != nil {
		return nil, err
	}
	if e.Timestamp != "" {
		field("timestamp")
		if dst, err = appendString(dst, e.Timestamp); err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendMetadata(dst []byte, m judgment.Metadata, path string) ([]byte, error) {
	var err error
	dst = append(dst, '{')
	for i, k := range m.SortedKeys() {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = appendString(dst, k); err != nil {
			return nil, err
		}
		dst = append(dst, ':')
		switch v := m[k].(type) {
		case judgment.StringValue:
			if dst, err = appendString(dst, string(v)); err != nil {
				return nil, err
			}
		case judgment.NumberValue:
			if dst, err = appendNumber(dst, float64(v), path+"."+k); err != nil {
				return nil, err
			}
		case judgment.BoolValue:
			if v {
				dst = append(dst, "true"...)
			} else {
				dst = append(dst, "false"...)
			}
		default:
			return nil, newEncodingError(path+"."+k, "unsupported metadata value %T", m[k])
		}
	}
	return append(dst, '}'), nil
}

// appendString encodes a JSON string with NFC normalization and minimal
// escaping: quote, backslash, and control characters below U+0020 only.
// CRITICAL: no HTML escaping - "<", ">", and "&" pass through raw, or
// seals diverge from encoders that escape them.
func appendString(dst []byte, s string) ([]byte, error) {
	s = norm.NFC.String(s)
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c >= 0x20:
			dst = append(dst, c)
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		default:
			const hex = "0123456789abcdef"
			dst = append(dst, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		}
	}
	return append(dst, '"'), nil
}
