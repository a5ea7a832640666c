// Package planner wraps the generative collaborators of the pipeline: the
// planning step that turns a query into a verification plan, and the
// synthesis step that turns ranked leads into human-readable rationale.
//
// Both collaborators are untrusted and optional. Malformed or missing
// output never fails a run; the orchestrator substitutes DefaultPlan or
// FallbackSynthesis and continues.
package planner
