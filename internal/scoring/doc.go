// Package scoring turns audited candidates into ranked leads.
//
// Everything in this package is a pure function over its inputs: no I/O,
// no randomness, no reads of ambient state. Identical evidence always
// produces identical scores, reason codes, and package suggestions, which
// is what makes lead ranking reproducible across runs.
//
// The package has three responsibilities: constraint predicate evaluation
// (filtering candidates against must and exclude lists), lead scoring
// (four weighted subscores combined into a 0 to 100 score with reason
// codes), and package recommendation (threshold rules mapping a scored
// lead to service package suggestions above a fixed confidence floor).
package scoring
