package canonical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumberBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"simple fraction", 0.8, "0.8"},
		{"two decimals", 0.05, "0.05"},
		{"whole number", 1.0, "1"},
		{"zero", 0.0, "0"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"negative", -0.25, "-0.25"},
		{"tolerance constant", 1e-9, "0.000000001"},
		{"large integer", 1e20, "100000000000000000000"},
		{"mixed", 123456789.123456, "123456789.1"},
		{"small with lead zeros", 0.0004, "0.0004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FormatNumber(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatNumberTenSignificantDigits(t *testing.T) {
	third, err := FormatNumber(1.0 / 3.0)
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333", third)

	twoThirds, err := FormatNumber(2.0 / 3.0)
	require.NoError(t, err)
	assert.Equal(t, "0.6666666667", twoThirds)

	// Rounding absorbs the classic binary representation artifact:
	// 0.1+0.2 is 0.30000000000000004 in float64 but must hash as "0.3".
	sum, err := FormatNumber(0.1 + 0.2)
	require.NoError(t, err)
	assert.Equal(t, "0.3", sum)
}

func TestFormatNumberNeverScientific(t *testing.T) {
	for _, f := range []float64{1e-9, 1e-6, 1e12, 1234567890123, 42.0} {
		s, err := FormatNumber(f)
		require.NoError(t, err)
		assert.NotContains(t, s, "e", "plain decimal only: %v -> %s", f, s)
		assert.NotContains(t, s, "E")
	}
}

func TestFormatNumberStripsTrailingZeros(t *testing.T) {
	s, err := FormatNumber(2.5000)
	require.NoError(t, err)
	assert.Equal(t, "2.5", s)

	s, err = FormatNumber(10.0)
	require.NoError(t, err)
	assert.Equal(t, "10", s)
}

func TestFormatNumberRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FormatNumber(f)
		require.Error(t, err)
		assert.True(t, IsEncodingError(err), "%v must fail with EncodingError", f)
	}
}

func TestFormatNumberDeterministic(t *testing.T) {
	// Same bits in, same bytes out - across calls and platforms.
	for _, f := range []float64{0.77, 1.0 / 7.0, 0.123456789012345, 3.14159265358979} {
		a, err := FormatNumber(f)
		require.NoError(t, err)
		b, err := FormatNumber(f)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}
