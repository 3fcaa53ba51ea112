package mapper

import (
	"fmt"
	"sort"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// CategoricalMapper maps discrete labels to fixed judgments, with an
// optional default for labels outside the table. Without a default, an
// unmapped label is a validation error: silently guessing a judgment
// for unknown input would defeat the point of explicit mappings.
type CategoricalMapper struct {
	ID       string            `json:"id"`
	Mappings map[string]Triple `json:"mappings"`
	Default  *Triple           `json:"default,omitempty"`
	Metadata judgment.Metadata `json:"metadata,omitempty"`

	// Timestamps stamps the provenance entry; nil uses system time.
	Timestamps judgment.TimestampSource `json:"-"`
}

// MapperID implements Mapper.
func (m CategoricalMapper) MapperID() string { return m.ID }

// MapperType implements Mapper.
func (CategoricalMapper) MapperType() Type { return TypeCategorical }

// Validate implements Mapper.
func (m CategoricalMapper) Validate() []error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "id",
			Message: "mapper id must not be empty",
		})
	}
	if len(m.Mappings) == 0 {
		errs = append(errs, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "mappings",
			Message: "categorical mapper requires at least one mapping",
		})
	}
	for _, category := range sortedCategories(m.Mappings) {
		if err := m.Mappings[category].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mapping %q: %w", category, err))
		}
	}
	if m.Default != nil {
		if err := m.Default.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("default: %w", err))
		}
	}
	return errs
}

// Apply looks up category and returns its judgment, falling back to
// the default when one is defined.
func (m CategoricalMapper) Apply(category string) (judgment.Judgment, error) {
	if errs := m.Validate(); len(errs) > 0 {
		return judgment.Judgment{}, invalidDefinition(m.ID, errs)
	}

	triple, ok := m.Mappings[category]
	if !ok {
		if m.Default == nil {
			return judgment.Judgment{}, &judgment.ValidationError{
				Code:    judgment.ErrCodeInvalidInput,
				Field:   "category",
				Message: fmt.Sprintf("category %q has no mapping and mapper %q defines no default", category, m.ID),
			}
		}
		triple = *m.Default
	}
	return emit(triple.T, triple.I, triple.F, m.ID, m.Timestamps, judgment.StringValue(category))
}

// sortedCategories fixes the error order; map iteration would shuffle
// it between runs.
func sortedCategories(mappings map[string]Triple) []string {
	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyValue implements Mapper, accepting string labels.
func (m CategoricalMapper) ApplyValue(value any) (judgment.Judgment, error) {
	switch v := value.(type) {
	case string:
		return m.Apply(v)
	case judgment.StringValue:
		return m.Apply(string(v))
	default:
		return judgment.Judgment{}, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "value",
			Message: fmt.Sprintf("categorical mapper %q requires a string, got %T", m.ID, value),
		}
	}
}
