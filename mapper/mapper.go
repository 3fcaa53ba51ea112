package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// Type discriminates mapper definitions in their serialized form.
type Type string

const (
	TypeNumerical   Type = "numerical"
	TypeCategorical Type = "categorical"
	TypeBoolean     Type = "boolean"
)

// Triple is a bare (T, I, F) value used inside mapper definitions,
// before any provenance exists.
type Triple struct {
	T float64 `json:"T"`
	I float64 `json:"I"`
	F float64 `json:"F"`
}

// Validate checks the range and conservation invariants.
func (t Triple) Validate() error {
	return judgment.ValidateTriple(t.T, t.I, t.F)
}

// Mapper turns raw values into judgments.
type Mapper interface {
	// MapperID returns the definition's id, used as the provenance
	// source_id of every judgment the mapper produces.
	MapperID() string

	// MapperType returns the definition's type tag.
	MapperType() Type

	// ApplyValue transforms a raw value. The accepted dynamic types
	// depend on the mapper; a value outside its input domain fails
	// with a *judgment.ValidationError.
	ApplyValue(value any) (judgment.Judgment, error)

	// Validate returns every constraint violation in the definition.
	// A decoded definition must validate cleanly before use.
	Validate() []error
}

// Validate reports every constraint violation in a mapper definition.
func Validate(m Mapper) []error {
	if m == nil {
		return []error{&judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "mapper",
			Message: "mapper is nil",
		}}
	}
	return m.Validate()
}

// typeProbe peeks at the discriminator field of a serialized mapper.
type typeProbe struct {
	Type Type `json:"type"`
}

// ParseMapper decodes a mapper definition from JSON, dispatching on
// its "type" field, and validates it.
func ParseMapper(data []byte) (Mapper, error) {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse mapper: %w", err)
	}

	var m Mapper
	switch probe.Type {
	case TypeNumerical:
		var nm NumericalMapper
		if err := json.Unmarshal(data, &nm); err != nil {
			return nil, fmt.Errorf("parse numerical mapper: %w", err)
		}
		m = nm
	case TypeCategorical:
		var cm CategoricalMapper
		if err := json.Unmarshal(data, &cm); err != nil {
			return nil, fmt.Errorf("parse categorical mapper: %w", err)
		}
		m = cm
	case TypeBoolean:
		var bm BooleanMapper
		if err := json.Unmarshal(data, &bm); err != nil {
			return nil, fmt.Errorf("parse boolean mapper: %w", err)
		}
		m = bm
	default:
		return nil, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "type",
			Message: fmt.Sprintf("unknown mapper type %q", probe.Type),
		}
	}

	if errs := m.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("mapper %q: %w", m.MapperID(), errs[0])
	}
	return m, nil
}

// MarshalMapper encodes a mapper definition to JSON with its "type"
// discriminator, the form ParseMapper accepts.
func MarshalMapper(m Mapper) ([]byte, error) {
	switch v := m.(type) {
	case NumericalMapper:
		return json.Marshal(struct {
			Type Type `json:"type"`
			NumericalMapper
		}{TypeNumerical, v})
	case CategoricalMapper:
		return json.Marshal(struct {
			Type Type `json:"type"`
			CategoricalMapper
		}{TypeCategorical, v})
	case BooleanMapper:
		return json.Marshal(struct {
			Type Type `json:"type"`
			BooleanMapper
		}{TypeBoolean, v})
	default:
		return nil, fmt.Errorf("marshal mapper: unsupported type %T", m)
	}
}

// emit builds the single-entry judgment every mapper produces: the
// mapper id as source, a fresh timestamp, and the applied input value
// recorded in metadata.
func emit(tv, iv, fv float64, id string, ts judgment.TimestampSource, input judgment.Value) (judgment.Judgment, error) {
	if ts == nil {
		ts = judgment.SystemTimestamps{}
	}
	return judgment.New(tv, iv, fv, []judgment.ProvenanceEntry{{
		SourceID:  id,
		Timestamp: ts.Now(),
		Metadata:  judgment.Metadata{"input_value": input},
	}})
}

// invalidDefinition wraps the first definition error for Apply paths.
func invalidDefinition(id string, errs []error) error {
	return fmt.Errorf("mapper %q definition invalid: %w", id, errs[0])
}
