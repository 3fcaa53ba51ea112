package canonical

import (
	"math"
	"strconv"
	"strings"
)

// significantDigits is the protocol's numeric precision. Rounding every
// float to 10 significant digits before rendering absorbs the last few
// bits of cross-platform arithmetic noise, so implementations that
// compute the same value through different instruction sequences still
// hash the same bytes.
const significantDigits = 10

// FormatNumber renders f in the protocol's fixed decimal form: rounded
// to 10 significant digits, plain decimal notation (never scientific),
// trailing fractional zeros stripped, negative zero rendered as "0".
//
// Examples: 0.8 -> "0.8", 0.05 -> "0.05", 1.0 -> "1", 1e-9 -> "0.000000001".
//
// Returns an EncodingError for NaN or infinity.
func FormatNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", newEncodingError("", "non-finite number %v has no canonical form", f)
	}
	if f == 0 {
		// Covers -0: the sign bit carries no information worth hashing.
		return "0", nil
	}

	// strconv's 'e' format gives exactly one integer digit plus
	// significantDigits-1 fraction digits, correctly rounded. From there
	// the plain decimal form is a matter of repositioning the point.
	mant := strconv.FormatFloat(f, 'e', significantDigits-1, 64)
	ePos := strings.IndexByte(mant, 'e')
	coeff, expPart := mant[:ePos], mant[ePos+1:]
	exp, err := strconv.Atoi(expPart)
	if err != nil {
		return "", newEncodingError("", "unparseable exponent in %q", mant)
	}

	neg := false
	if coeff[0] == '-' {
		neg = true
		coeff = coeff[1:]
	}
	digits := coeff[:1] + coeff[2:] // drop the point: 10 significant digits

	// pointPos is where the decimal point sits relative to digits.
	pointPos := exp + 1

	var intPart, fracPart string
	switch {
	case pointPos <= 0:
		intPart = "0"
		fracPart = strings.Repeat("0", -pointPos) + digits
	case pointPos >= len(digits):
		intPart = digits + strings.Repeat("0", pointPos-len(digits))
	default:
		intPart = digits[:pointPos]
		fracPart = digits[pointPos:]
	}

	fracPart = strings.TrimRight(fracPart, "0")
	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out, nil
}

// appendNumber appends the canonical rendering of f, reporting failures
// against path.
func appendNumber(dst []byte, f float64, path string) ([]byte, error) {
	s, err := FormatNumber(f)
	if err != nil {
		ee := err.(*EncodingError)
		ee.Path = path
		return nil, ee
	}
	return append(dst, s...), nil
}
