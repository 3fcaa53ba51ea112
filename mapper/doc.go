// Package mapper transforms raw domain values into neutrosophic
// judgments at the protocol boundary.
//
// A mapper is a declarative definition: numerical mappers interpolate
// between three anchor values, categorical mappers look up a fixed
// table, boolean mappers pick one of two triples. Applying a mapper
// yields a judgment whose chain holds exactly one provenance entry,
// tagged with the mapper's id and the input value that produced it.
//
// Definitions are plain data. They serialize to JSON, load from CUE
// spec files, and persist in the journal; a decoded definition is
// validated before use, never trusted.
//
// Mappers are grouped in an explicitly constructed Registry passed to
// whatever needs one. There is no process-wide registry.
package mapper
