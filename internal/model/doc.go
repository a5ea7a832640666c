// Package model defines the core data structures used throughout LeadLens.
//
// This package contains the following main types:
//   - Query: The validated, structured search request (the DSL)
//   - EvidenceEntry: A single immutable observation made during an audit
//   - AuditResult: The outcome of auditing one candidate website
//   - Lead: A business candidate enriched with score and reason codes
//   - Recipe: A compiled, guarded action plan for a chosen package
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (audit, scoring, pipeline, report, store)
// need to use these types, so centralizing them prevents import cycles.
//
// Evidence logs, audit results, and scored leads are constructed append-only
// and never mutated after creation. A re-audit produces a new AuditResult
// rather than updating an existing one.
package model
