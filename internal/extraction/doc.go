// Package extraction parses free-text customer queries into typed attributes
// (brand, issue type, timeframe, query category) using ordered keyword and
// pattern rules, and decides whether a query should consult the knowledge
// graph.
//
// Everything in this package is a pure function of the input text: no I/O,
// no state, no failure modes. Absence of a match yields an empty value, never
// an error.
package extraction
