package mapper

import (
	"fmt"
	"math"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// NumericalMapper interpolates a continuous value across three anchor
// points: total falsity, total indeterminacy, and total truth.
//
// Anchors must be strictly ordered, in either direction. Ascending
// (falsity < indeterminacy < truth) suits "bigger is better" domains
// like a DeFi health factor; descending suits "smaller is better"
// domains like server-room temperature. Values between falsity and
// indeterminacy trade F for I linearly; values between indeterminacy
// and truth trade I for T. Values beyond an outer anchor clamp to that
// anchor's judgment.
type NumericalMapper struct {
	ID                 string            `json:"id"`
	FalsityPoint       float64           `json:"falsity_point"`
	IndeterminacyPoint float64           `json:"indeterminacy_point"`
	TruthPoint         float64           `json:"truth_point"`
	Metadata           judgment.Metadata `json:"metadata,omitempty"`

	// Timestamps stamps the provenance entry; nil uses system time.
	Timestamps judgment.TimestampSource `json:"-"`
}

// MapperID implements Mapper.
func (m NumericalMapper) MapperID() string { return m.ID }

// MapperType implements Mapper.
func (NumericalMapper) MapperType() Type { return TypeNumerical }

// Validate implements Mapper.
func (m NumericalMapper) Validate() []error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "id",
			Message: "mapper id must not be empty",
		})
	}
	for _, a := range [...]struct {
		name  string
		value float64
	}{
		{"falsity_point", m.FalsityPoint},
		{"indeterminacy_point", m.IndeterminacyPoint},
		{"truth_point", m.TruthPoint},
	} {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			errs = append(errs, &judgment.ValidationError{
				Code:    judgment.ErrCodeInvalidInput,
				Field:   a.name,
				Message: fmt.Sprintf("%s must be finite, got %v", a.name, a.value),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	ascending := m.FalsityPoint < m.IndeterminacyPoint && m.IndeterminacyPoint < m.TruthPoint
	descending := m.FalsityPoint > m.IndeterminacyPoint && m.IndeterminacyPoint > m.TruthPoint
	if !ascending && !descending {
		errs = append(errs, &judgment.ValidationError{
			Code:  judgment.ErrCodeInvalidInput,
			Field: "anchors",
			Message: fmt.Sprintf(
				"anchor points must be strictly ordered in one direction, got falsity=%v indeterminacy=%v truth=%v",
				m.FalsityPoint, m.IndeterminacyPoint, m.TruthPoint),
		})
	}
	return errs
}

// Apply maps value onto the anchor scale and returns the judgment.
func (m NumericalMapper) Apply(value float64) (judgment.Judgment, error) {
	if errs := m.Validate(); len(errs) > 0 {
		return judgment.Judgment{}, invalidDefinition(m.ID, errs)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return judgment.Judgment{}, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "value",
			Message: fmt.Sprintf("value must be finite, got %v", value),
		}
	}

	tv, iv, fv := m.interpolate(value)
	return emit(tv, iv, fv, m.ID, m.Timestamps, judgment.NumberValue(value))
}

// ApplyValue implements Mapper, accepting any numeric value.
func (m NumericalMapper) ApplyValue(value any) (judgment.Judgment, error) {
	switch v := value.(type) {
	case float64:
		return m.Apply(v)
	case float32:
		return m.Apply(float64(v))
	case int:
		return m.Apply(float64(v))
	case int64:
		return m.Apply(float64(v))
	case judgment.NumberValue:
		return m.Apply(float64(v))
	default:
		return judgment.Judgment{}, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "value",
			Message: fmt.Sprintf("numerical mapper %q requires a number, got %T", m.ID, value),
		}
	}
}

// interpolate positions value on the anchor scale. The mapper is
// validated, so the anchors are strictly ordered one way or the other.
func (m NumericalMapper) interpolate(value float64) (tv, iv, fv float64) {
	fp, ip, tp := m.FalsityPoint, m.IndeterminacyPoint, m.TruthPoint
	if fp < ip {
		switch {
		case value <= fp:
			return 0, 0, 1
		case value >= tp:
			return 1, 0, 0
		case value <= ip:
			frac := (value - fp) / (ip - fp)
			return 0, frac, 1 - frac
		default:
			frac := (value - ip) / (tp - ip)
			return frac, 1 - frac, 0
		}
	}
	switch {
	case value >= fp:
		return 0, 0, 1
	case value <= tp:
		return 1, 0, 0
	case value >= ip:
		frac := (fp - value) / (fp - ip)
		return 0, frac, 1 - frac
	default:
		frac := (ip - value) / (ip - tp)
		return frac, 1 - frac, 0
	}
}
