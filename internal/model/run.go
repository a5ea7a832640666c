package model

import "time"

// Stage identifies one phase of the enrichment pipeline.
//
// Design decision: We use iota-based constants with a String() method,
// matching how stages are compared and ordered internally, while the string
// form is what gets recorded in stage-tagged errors and reports.
type Stage int

// Pipeline stages in execution order.
const (
	StagePlanning Stage = iota
	StageDiscovering
	StageAuditing
	StageScoring
	StageSynthesizing
)

// String returns the stage name used in error tags and logs.
func (s Stage) String() string {
	switch s {
	case StagePlanning:
		return "Planning"
	case StageDiscovering:
		return "Discovering"
	case StageAuditing:
		return "Auditing"
	case StageScoring:
		return "Scoring"
	case StageSynthesizing:
		return "Synthesizing"
	default:
		return "Unknown"
	}
}

// StageError records a contained failure in one pipeline stage.
// Stage failures never abort the run; they are converted into data here
// and the pipeline proceeds with whatever partial output the stage produced.
type StageError struct {
	// Stage is the name of the stage that failed.
	Stage string `json:"stage"`

	// Message is the failure description.
	Message string `json:"message"`
}

// VerificationPlan is the planning collaborator's output: how to search,
// which paths to audit, and which vendor patterns matter for this query.
// The plan is untrusted; malformed or absent plans degrade to fixed defaults.
type VerificationPlan struct {
	// PlacesQueries are the directory search strings to run.
	PlacesQueries []string `json:"places_queries"`

	// WebsitePaths are the relative paths the audit engine should check.
	WebsitePaths []string `json:"website_paths_to_check,omitempty"`

	// BookingVendorPatterns are extra booking vendor signatures to scan for.
	BookingVendorPatterns []string `json:"booking_vendor_patterns,omitempty"`

	// CrossValidationRules describe how discovery results should be
	// cross-checked. Advisory; recorded for the synthesis step.
	CrossValidationRules []string `json:"cross_validation_rules,omitempty"`

	// EnrichmentOrder names the enrichment steps in preferred order.
	EnrichmentOrder []string `json:"enrichment_order,omitempty"`
}

// Synthesis is the synthesis collaborator's human-readable rationale for
// a run. When the collaborator fails, a fixed degraded fallback is
// substituted so the run result always carries a synthesis.
type Synthesis struct {
	ConfidenceReasons []string `json:"confidence_reasons,omitempty"`
	Recommendation    string   `json:"recommendation"`
	RankedSummary     string   `json:"ranked_summary"`

	// Degraded is true when this synthesis is the fixed fallback rather
	// than collaborator output.
	Degraded bool `json:"degraded,omitempty"`
}

// RunResult is the final output of one pipeline invocation: the ranked lead
// list plus the non-fatal error log. Partial results (fewer leads than
// requested, missing synthesis) are valid, non-error outcomes.
type RunResult struct {
	// RunID identifies this pipeline invocation.
	RunID string `json:"run_id"`

	// Query is the validated query the run executed.
	Query *Query `json:"query,omitempty"`

	// Leads is the scored lead list, sorted by descending score with
	// candidate ID as the deterministic tie-break.
	Leads []Lead `json:"leads"`

	// Errors lists contained stage failures, tagged by stage name.
	Errors []StageError `json:"errors,omitempty"`

	// Warnings lists non-error advisories, e.g. an unmet result minimum.
	Warnings []string `json:"warnings,omitempty"`

	// Synthesis is the human-readable rationale, possibly degraded.
	Synthesis *Synthesis `json:"synthesis,omitempty"`

	// PipelineSuccess is true when the run produced at least one scored
	// lead, independent of whether earlier stages logged errors.
	PipelineSuccess bool `json:"pipeline_success"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// AddStageError appends a stage-tagged error to the run's error log.
func (r *RunResult) AddStageError(stage Stage, err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, StageError{Stage: stage.String(), Message: err.Error()})
}
