// Package compiler turns CUE mapper definitions into mapper values.
//
// Compilation is structural: it checks that the required fields exist
// and carry the right CUE kinds, and reports failures with source
// positions. Semantic rules (anchor ordering, conservation of mapped
// triples) belong to the mapper package's Validate methods, so a
// caller collecting every problem in a definition runs both stages.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/mapper"
)

// CompileMapper parses a CUE value into a mapper definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the mapper struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`mapper: health: { ... }`)
//	m, err := CompileMapper(v.LookupPath(cue.ParsePath("mapper.health")))
func CompileMapper(v cue.Value) (mapper.Mapper, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	id, err := requiredString(v, "id")
	if err != nil {
		return nil, err
	}

	typ, err := requiredString(v, "type")
	if err != nil {
		return nil, err
	}

	meta, err := parseMetadata(v)
	if err != nil {
		return nil, err
	}

	switch mapper.Type(typ) {
	case mapper.TypeNumerical:
		return compileNumerical(v, id, meta)
	case mapper.TypeCategorical:
		return compileCategorical(v, id, meta)
	case mapper.TypeBoolean:
		return compileBoolean(v, id, meta)
	default:
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unknown mapper type %q (want numerical, categorical, or boolean)", typ),
			Pos:     v.Pos(),
		}
	}
}

// compileNumerical parses the three interpolation anchors.
func compileNumerical(v cue.Value, id string, meta judgment.Metadata) (mapper.Mapper, error) {
	fp, err := requiredFloat(v, "falsity_point")
	if err != nil {
		return nil, err
	}
	ip, err := requiredFloat(v, "indeterminacy_point")
	if err != nil {
		return nil, err
	}
	tp, err := requiredFloat(v, "truth_point")
	if err != nil {
		return nil, err
	}
	return mapper.NumericalMapper{
		ID:                 id,
		FalsityPoint:       fp,
		IndeterminacyPoint: ip,
		TruthPoint:         tp,
		Metadata:           meta,
	}, nil
}

// compileCategorical parses the label→triple table and the optional
// default triple.
func compileCategorical(v cue.Value, id string, meta judgment.Metadata) (mapper.Mapper, error) {
	mappingsVal := v.LookupPath(cue.ParsePath("mappings"))
	if !mappingsVal.Exists() {
		return nil, &CompileError{
			Field:   "mappings",
			Message: "mappings are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := mappingsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	mappings := make(map[string]mapper.Triple)
	for iter.Next() {
		label := iter.Label()
		triple, err := parseTriple(iter.Value(), "mappings."+label)
		if err != nil {
			return nil, err
		}
		mappings[label] = triple
	}

	m := mapper.CategoricalMapper{
		ID:       id,
		Mappings: mappings,
		Metadata: meta,
	}

	defaultVal := v.LookupPath(cue.ParsePath("default"))
	if defaultVal.Exists() {
		triple, err := parseTriple(defaultVal, "default")
		if err != nil {
			return nil, err
		}
		m.Default = &triple
	}

	return m, nil
}

// compileBoolean parses the two branch triples.
func compileBoolean(v cue.Value, id string, meta judgment.Metadata) (mapper.Mapper, error) {
	trueVal := v.LookupPath(cue.ParsePath("true_map"))
	if !trueVal.Exists() {
		return nil, &CompileError{
			Field:   "true_map",
			Message: "true_map is required",
			Pos:     v.Pos(),
		}
	}
	trueMap, err := parseTriple(trueVal, "true_map")
	if err != nil {
		return nil, err
	}

	falseVal := v.LookupPath(cue.ParsePath("false_map"))
	if !falseVal.Exists() {
		return nil, &CompileError{
			Field:   "false_map",
			Message: "false_map is required",
			Pos:     v.Pos(),
		}
	}
	falseMap, err := parseTriple(falseVal, "false_map")
	if err != nil {
		return nil, err
	}

	return mapper.BooleanMapper{
		ID:       id,
		TrueMap:  trueMap,
		FalseMap: falseMap,
		Metadata: meta,
	}, nil
}

// parseTriple reads a {T, I, F} struct. All three components are
// required in the CUE form; omitting one is almost always an authoring
// mistake, so there is no zero default.
func parseTriple(v cue.Value, field string) (mapper.Triple, error) {
	var triple mapper.Triple
	for _, component := range []struct {
		name string
		dst  *float64
	}{
		{"T", &triple.T},
		{"I", &triple.I},
		{"F", &triple.F},
	} {
		val := v.LookupPath(cue.ParsePath(component.name))
		if !val.Exists() {
			return triple, &CompileError{
				Field:   field + "." + component.name,
				Message: fmt.Sprintf("%s component is required", component.name),
				Pos:     v.Pos(),
			}
		}
		f, err := val.Float64()
		if err != nil {
			return triple, formatCUEError(err)
		}
		*component.dst = f
	}
	return triple, nil
}

// parseMetadata reads the optional metadata struct. Values must be
// scalars; judgment metadata is a closed set of string, number, and
// bool.
func parseMetadata(v cue.Value) (judgment.Metadata, error) {
	metaVal := v.LookupPath(cue.ParsePath("metadata"))
	if !metaVal.Exists() {
		return nil, nil
	}

	iter, err := metaVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	meta := make(judgment.Metadata)
	for iter.Next() {
		key := iter.Label()
		value, err := metadataValue(iter.Value(), key)
		if err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, nil
}

func metadataValue(v cue.Value, key string) (judgment.Value, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return judgment.StringValue(s), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return judgment.BoolValue(b), nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return judgment.NumberValue(f), nil
	default:
		return nil, &CompileError{
			Field:   "metadata." + key,
			Message: fmt.Sprintf("metadata values must be strings, numbers, or booleans, got %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// requiredString reads a required string field.
func requiredString(v cue.Value, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// requiredFloat reads a required numeric field.
func requiredFloat(v cue.Value, field string) (float64, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return 0, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	f, err := val.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
