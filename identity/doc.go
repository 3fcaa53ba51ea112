// Package identity assigns content-addressed ids to judgments and
// creates outcome judgments that link back to earlier decisions.
//
// A judgment id is the SHA-256 digest of the judgment's canonical
// encoding with every judgment_id field stripped from its provenance
// chain. Stripping prevents self-referential hashing: the id commits to
// the judgment as it existed before identity was assigned, so assigning
// never changes what the id addresses.
//
// Outcome ids additionally cover the back-reference, the outcome type,
// and the oracle source, so an outcome can never share an id with the
// plain judgment of the same shape.
package identity
