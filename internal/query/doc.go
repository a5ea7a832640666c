// Package query validates the structured search query and extracts
// best-effort query fragments from free text.
//
// The validator enforces the query schema in a fixed order: shape, types,
// ranges, then cross-field checks. It never panics past the caller; it
// returns either a fully-defaulted copy of the query or a structured list
// of field-path errors. Validation is idempotent: a query that passed once
// passes again unchanged.
//
// The extractor is the deterministic counterpart of the generative planner.
// It uses fixed keyword tables and ordered regular expressions, makes no
// external calls, and never asserts a constraint the text does not support.
package query
