// Package interpret turns an event-model document into an Interpretation.
//
// A single call to Interpret parses and guards the input, indexes every
// element by id, synthesizes an ordered flow for each slice according to its
// slice type, renders the behavioral specifications, composes a one-line
// visual flow, and finally aggregates counts and the external events that
// drive the simulator slice.
//
// The package is pure: it performs no I/O and keeps all state local to the
// call, so interpreting the same text twice yields identical output.
// Malformed input never produces an error; it produces an empty
// interpretation carrying a single warning.
package interpret
