// Package audit implements the website evidence-audit engine.
//
// An audit fetches a bounded set of relative paths for one candidate
// website and interprets the returned HTML for tracked features: online
// booking, chat widget, payment processor, SSL, and mobile responsiveness.
// Every observation, including failed fetches, becomes an immutable
// evidence entry with provenance and a calibrated confidence.
//
// Path checks run sequentially in the caller-supplied order so that
// "first vendor match wins" is deterministic. Independent audits share no
// mutable state and are safely parallelizable; the pipeline package bounds
// that fan-out.
//
// The engine asserts absence carefully: a feature is confirmed absent only
// after at least two paths were successfully fetched without a match.
// With fewer successes the feature merely defaults to not-found, which
// callers must read as "insufficient evidence".
package audit
