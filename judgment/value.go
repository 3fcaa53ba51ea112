package judgment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Value is a sealed interface representing provenance metadata values.
// Only StringValue, NumberValue, and BoolValue implement it. Metadata is
// deliberately a closed scalar set: nested arrays and objects would make
// canonical encoding depend on arbitrary structure, and null carries no
// information a missing key doesn't.
type Value interface {
	metadataValue() // Sealed - only these types implement it
}

// StringValue represents a string metadata value.
type StringValue string

func (StringValue) metadataValue() {}

// NumberValue represents a numeric metadata value.
// Non-finite values are rejected at canonicalization time, not here.
type NumberValue float64

func (NumberValue) metadataValue() {}

// BoolValue represents a boolean metadata value.
type BoolValue bool

func (BoolValue) metadataValue() {}

// Metadata is a string-keyed mapping of scalar metadata values.
type Metadata map[string]Value

// SortedKeys returns keys in lexicographic byte order, the order used by
// both the wire format and the canonical encoding.
func (m Metadata) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of the metadata map. Values are scalars, so a
// shallow copy of the map is a full copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler with sorted keys for stable output.
// NOTE: This is the wire format, not the canonical encoding used for
// hashing; numbers here follow encoding/json formatting.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range m.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("marshal metadata value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case StringValue:
		return json.Marshal(string(val))
	case NumberValue:
		return json.Marshal(float64(val))
	case BoolValue:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	default:
		return nil, fmt.Errorf("unknown metadata value type: %T", v)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Arrays, objects, and null are
// rejected - only the closed scalar set is accepted.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = make(Metadata, len(raw))
	for k, v := range raw {
		val, err := unmarshalValue(v)
		if err != nil {
			return fmt.Errorf("metadata key %q: %w", k, err)
		}
		(*m)[k] = val
	}
	return nil
}

// unmarshalValue decodes a JSON scalar into a Value.
func unmarshalValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return StringValue(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return BoolValue(b), nil

	case 'n':
		return nil, fmt.Errorf("null is not allowed in metadata: use a missing key instead")

	case '[', '{':
		return nil, fmt.Errorf("nested values are not allowed in metadata: only string, number, bool")

	default:
		f, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid metadata number: %s", string(data))
		}
		return NumberValue(f), nil
	}
}
