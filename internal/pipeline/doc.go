// Package pipeline orchestrates one lead-discovery run: planning, candidate
// discovery, the audit fan-out, scoring, and synthesis.
//
// The orchestrator owns failure containment. Every stage's error is caught,
// tagged with the stage name, and appended to the run's error log; the run
// then proceeds with whatever partial output the failed stage produced. A
// run succeeds when it scores at least one lead, regardless of how many
// stages logged errors along the way.
//
// Collaborators (planner, discoverer, auditor, synthesizer) are injected as
// interfaces. The generative ones are optional: a nil planner or
// synthesizer degrades to fixed defaults without logging an error, while a
// present-but-failing one logs a stage error first.
package pipeline
