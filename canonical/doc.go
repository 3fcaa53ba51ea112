// Package canonical produces the deterministic byte encoding that seals
// and judgment ids are computed over.
//
// Canonical encoding is the ONLY serialization that may be used as hash
// input. Two conforming implementations, in any language, must produce
// byte-identical output for semantically identical inputs, so every
// rule here is part of the protocol contract:
//
//   - Object keys are sorted lexicographically by byte value.
//   - Numbers are rounded to 10 significant digits and rendered as plain
//     decimal: no exponent, no trailing fractional zeros, no "-0".
//   - Strings are NFC normalized and minimally escaped (quote, backslash,
//     and control characters only - no HTML escaping).
//   - Sequence order of judgments and weights is preserved, never sorted;
//     order is semantically significant to the weighted operator.
//   - Optional fields are omitted when absent, never encoded as null.
//
// Non-finite numbers and malformed metadata fail with EncodingError.
// Encoding never guesses: an input it cannot represent canonically is
// refused, not approximated.
package canonical
