package mapper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrustprotocol/otp-go/judgment"
)

func fixedStamp() *judgment.FixedTimestamps {
	return judgment.NewFixedTimestamps("2023-03-01T00:00:00Z")
}

// defiMapper is the health-factor scale: 1.0 means liquidation
// imminent, 1.5 the risk zone, 3.0 a safe position.
func defiMapper(ts judgment.TimestampSource) NumericalMapper {
	return NumericalMapper{
		ID:                 "defi-health-factor",
		FalsityPoint:       1.0,
		IndeterminacyPoint: 1.5,
		TruthPoint:         3.0,
		Timestamps:         ts,
	}
}

func TestNumericalMapperAscending(t *testing.T) {
	cases := []struct {
		name       string
		value      float64
		tv, iv, fv float64
	}{
		{"at falsity anchor", 1.0, 0, 0, 1},
		{"below falsity anchor clamps", 0.5, 0, 0, 1},
		{"halfway falsity to indeterminacy", 1.25, 0, 0.5, 0.5},
		{"at indeterminacy anchor", 1.5, 0, 1, 0},
		{"halfway indeterminacy to truth", 2.25, 0.5, 0.5, 0},
		{"at truth anchor", 3.0, 1, 0, 0},
		{"above truth anchor clamps", 5.0, 1, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j, err := defiMapper(fixedStamp()).Apply(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.tv, j.T)
			assert.Equal(t, tc.iv, j.I)
			assert.Equal(t, tc.fv, j.F)
		})
	}

	t.Run("interior point", func(t *testing.T) {
		j, err := defiMapper(fixedStamp()).Apply(1.8)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, j.T, 1e-9)
		assert.InDelta(t, 0.8, j.I, 1e-9)
		assert.Equal(t, 0.0, j.F)
	})
}

func TestNumericalMapperDescending(t *testing.T) {
	// Server-room temperature: cold is trustworthy, hot is not.
	temp := NumericalMapper{
		ID:                 "server-room-temp",
		FalsityPoint:       35.0,
		IndeterminacyPoint: 22.0,
		TruthPoint:         18.0,
		Timestamps:         fixedStamp(),
	}

	cases := []struct {
		name       string
		value      float64
		tv, iv, fv float64
	}{
		{"below truth anchor clamps", 15.0, 1, 0, 0},
		{"at truth anchor", 18.0, 1, 0, 0},
		{"halfway truth to indeterminacy", 20.0, 0.5, 0.5, 0},
		{"at indeterminacy anchor", 22.0, 0, 1, 0},
		{"at falsity anchor", 35.0, 0, 0, 1},
		{"above falsity anchor clamps", 38.0, 0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			temp.Timestamps = fixedStamp()
			j, err := temp.Apply(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.tv, j.T)
			assert.Equal(t, tc.iv, j.I)
			assert.Equal(t, tc.fv, j.F)
		})
	}

	t.Run("interior point toward falsity", func(t *testing.T) {
		temp.Timestamps = fixedStamp()
		j, err := temp.Apply(25.0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, j.T)
		assert.InDelta(t, 10.0/13.0, j.I, 1e-9)
		assert.InDelta(t, 3.0/13.0, j.F, 1e-9)
	})
}

func TestNumericalMapperConservation(t *testing.T) {
	m := defiMapper(nil)
	for v := -1.0; v <= 6.0; v += 0.1 {
		j, err := m.Apply(v)
		require.NoError(t, err)
		assert.InDelta(t, 1, j.T+j.I+j.F, judgment.ConservationEpsilon, "value %v", v)
	}
}

func TestNumericalMapperProvenance(t *testing.T) {
	j, err := defiMapper(fixedStamp()).Apply(1.8)
	require.NoError(t, err)

	require.Len(t, j.Chain, 1, "mapper judgments carry exactly one provenance entry")
	entry := j.Chain[0]
	assert.Equal(t, "defi-health-factor", entry.SourceID)
	assert.Equal(t, "2023-03-01T00:00:00Z", entry.Timestamp)
	assert.Equal(t, judgment.NumberValue(1.8), entry.Metadata["input_value"])
	assert.Empty(t, entry.ConformanceSeal)
	assert.Empty(t, entry.JudgmentID)
}

func TestNumericalMapperRejectsNonFiniteValue(t *testing.T) {
	m := defiMapper(nil)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := m.Apply(v)
		var ve *judgment.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, judgment.ErrCodeInvalidInput, ve.Code)
	}
}

func TestNumericalMapperValidate(t *testing.T) {
	cases := []struct {
		name   string
		mapper NumericalMapper
		field  string
	}{
		{
			"empty id",
			NumericalMapper{FalsityPoint: 1, IndeterminacyPoint: 2, TruthPoint: 3},
			"id",
		},
		{
			"equal anchors",
			NumericalMapper{ID: "m", FalsityPoint: 1, IndeterminacyPoint: 1, TruthPoint: 3},
			"anchors",
		},
		{
			"non-monotonic anchors",
			NumericalMapper{ID: "m", FalsityPoint: 1, IndeterminacyPoint: 3, TruthPoint: 2},
			"anchors",
		},
		{
			"non-finite anchor",
			NumericalMapper{ID: "m", FalsityPoint: math.NaN(), IndeterminacyPoint: 2, TruthPoint: 3},
			"falsity_point",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.mapper.Validate()
			require.NotEmpty(t, errs)
			var ve *judgment.ValidationError
			require.ErrorAs(t, errs[0], &ve)
			assert.Equal(t, tc.field, ve.Field)

			_, err := tc.mapper.Apply(2)
			assert.Error(t, err, "invalid definitions must not apply")
		})
	}

	assert.Empty(t, defiMapper(nil).Validate())
}

func TestNumericalMapperApplyValue(t *testing.T) {
	m := NumericalMapper{
		ID:                 "credit-score",
		FalsityPoint:       300,
		IndeterminacyPoint: 650,
		TruthPoint:         850,
		Timestamps:         judgment.NewFixedTimestamps("2023-03-01T00:00:00Z", "2023-03-01T00:00:01Z"),
	}

	fromInt, err := m.ApplyValue(720)
	require.NoError(t, err)
	fromFloat, err := m.ApplyValue(720.0)
	require.NoError(t, err)
	assert.Equal(t, fromFloat.T, fromInt.T)

	_, err = m.ApplyValue("720")
	var ve *judgment.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, judgment.ErrCodeInvalidInput, ve.Code)
}
