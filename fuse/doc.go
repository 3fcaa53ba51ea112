// Package fuse implements the protocol's fusion operators: the
// conflict-aware weighted average and the optimistic and pessimistic
// extremes.
//
// Every operator is a pure function over one or more input judgments.
// It computes the fused T/I/F triple, seals the inputs and its own
// versioned operator id (see the seal package), and returns a fresh
// judgment whose chain holds exactly the sealed fusion entry and an
// identity entry. Input judgments and their chains are never retained
// or modified - the seal is the only durable link from output back to
// inputs.
//
// Operator semantics are versioned protocol contracts. The exact
// arithmetic of an operator id, including the conflict measure of
// otp-cawa-v1.1, must never change under that id: two implementations
// disagreeing on the formula would silently break cross-implementation
// verification. New formulas get new ids.
//
// Operators are resolved through an explicitly constructed Registry;
// there is no process-wide operator table.
package fuse
