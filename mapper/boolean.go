package mapper

import (
	"fmt"
	"strings"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// BooleanMapper maps a two-state signal to one of two judgments.
// ApplyValue additionally coerces the common encodings a two-state
// signal arrives in: 1/0 numbers and "true"/"false", "yes"/"no",
// "1"/"0" strings.
type BooleanMapper struct {
	ID       string            `json:"id"`
	TrueMap  Triple            `json:"true_map"`
	FalseMap Triple            `json:"false_map"`
	Metadata judgment.Metadata `json:"metadata,omitempty"`

	// Timestamps stamps the provenance entry; nil uses system time.
	Timestamps judgment.TimestampSource `json:"-"`
}

// MapperID implements Mapper.
func (m BooleanMapper) MapperID() string { return m.ID }

// MapperType implements Mapper.
func (BooleanMapper) MapperType() Type { return TypeBoolean }

// Validate implements Mapper.
func (m BooleanMapper) Validate() []error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "id",
			Message: "mapper id must not be empty",
		})
	}
	if err := m.TrueMap.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("true_map: %w", err))
	}
	if err := m.FalseMap.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("false_map: %w", err))
	}
	return errs
}

// Apply returns the judgment for value.
func (m BooleanMapper) Apply(value bool) (judgment.Judgment, error) {
	if errs := m.Validate(); len(errs) > 0 {
		return judgment.Judgment{}, invalidDefinition(m.ID, errs)
	}
	triple := m.FalseMap
	if value {
		triple = m.TrueMap
	}
	return emit(triple.T, triple.I, triple.F, m.ID, m.Timestamps, judgment.BoolValue(value))
}

// ApplyValue implements Mapper, coercing numeric and string encodings.
func (m BooleanMapper) ApplyValue(value any) (judgment.Judgment, error) {
	b, err := coerceBool(m.ID, value)
	if err != nil {
		return judgment.Judgment{}, err
	}
	return m.Apply(b)
}

// coerceBool maps the accepted two-state encodings onto bool. Anything
// ambiguous (numbers other than 1/0, unrecognized strings) is invalid
// input, never guessed.
func coerceBool(id string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case judgment.BoolValue:
		return bool(v), nil
	case int:
		if v == 1 || v == 0 {
			return v == 1, nil
		}
	case int64:
		if v == 1 || v == 0 {
			return v == 1, nil
		}
	case float64:
		if v == 1 || v == 0 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		}
	}
	return false, &judgment.ValidationError{
		Code:    judgment.ErrCodeInvalidInput,
		Field:   "value",
		Message: fmt.Sprintf("boolean mapper %q cannot interpret %v (%T)", id, value, value),
	}
}
