package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/planner"
	"github.com/leadlens/leadlens/internal/scoring"
)

// PlanProvider is the planning collaborator: it turns the raw query text
// into a verification plan. The planner package's Planner satisfies it.
type PlanProvider interface {
	Plan(ctx context.Context, queryText string) (model.VerificationPlan, error)
}

// Discoverer is the candidate-discovery collaborator: one text query in, a
// list of raw business records out.
type Discoverer interface {
	Search(ctx context.Context, query string) ([]model.Candidate, error)
}

// Auditor audits one website. The audit package's Engine satisfies it.
type Auditor interface {
	Audit(ctx context.Context, websiteURL string) *model.AuditResult
}

// AuditorFactory builds the auditor for a run from its verification plan,
// so planner-suggested paths and vendor patterns reach the audit engine.
//
// Design decision: A factory rather than a fixed auditor, for the same
// reason batch scan pipelines are built per invocation: the plan is only
// known at run time, and each run's auditor must not inherit another run's
// plan.
type AuditorFactory func(plan model.VerificationPlan) Auditor

// Synthesizer is the synthesis collaborator: ranked leads and the error
// log in, human-readable rationale out.
type Synthesizer interface {
	Synthesize(ctx context.Context, leads []model.Lead, stageErrors []model.StageError) (model.Synthesis, error)
}

// Orchestrator runs the enrichment pipeline. Construct once, run many
// times; runs share no state beyond configuration.
type Orchestrator struct {
	planner        PlanProvider
	discoverer     Discoverer
	auditorFactory AuditorFactory
	synthesizer    Synthesizer

	weights       model.Weights
	concurrency   int
	maxCandidates int
	runTimeout    time.Duration
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPlanner sets the planning collaborator. Without one, every run uses
// the fixed default plan.
func WithPlanner(p PlanProvider) Option {
	return func(o *Orchestrator) {
		o.planner = p
	}
}

// WithSynthesizer sets the synthesis collaborator. Without one, every run
// carries the fixed degraded synthesis.
func WithSynthesizer(s Synthesizer) Option {
	return func(o *Orchestrator) {
		o.synthesizer = s
	}
}

// WithWeights sets the subscore weights for scoring.
func WithWeights(w model.Weights) Option {
	return func(o *Orchestrator) {
		if w.Sum() > 0 {
			o.weights = w
		}
	}
}

// WithConcurrency caps how many audits run simultaneously.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxCandidates caps how many candidates reach the audit stage.
func WithMaxCandidates(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxCandidates = n
		}
	}
}

// WithRunTimeout bounds the whole run. Per-fetch timeouts still apply
// inside the audit engine; this deadline covers stalled collaborators.
func WithRunTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.runTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an orchestrator around the required collaborators. The
// discoverer and auditor factory are mandatory; planner and synthesizer
// are optional and degrade to fixed defaults.
func New(discoverer Discoverer, auditorFactory AuditorFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		discoverer:     discoverer,
		auditorFactory: auditorFactory,
		weights:        scoring.DefaultWeights(),
		concurrency:    config.DefaultAuditConcurrency,
		maxCandidates:  config.DefaultMaxAuditCandidates,
		runTimeout:     config.DefaultRunTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one pipeline invocation for a validated query. queryText is
// the raw user text handed to the planning collaborator; it may be empty
// when the query arrived pre-structured.
//
// Run never returns an error: stage failures are contained in the result's
// error log, and partial results are valid outcomes.
func (o *Orchestrator) Run(ctx context.Context, q *model.Query, queryText string) *model.RunResult {
	result := &model.RunResult{
		RunID:     uuid.NewString(),
		Query:     q,
		StartedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, o.runTimeout)
	defer cancel()

	o.logger.Info("run started", "run_id", result.RunID, "vertical", q.Vertical, "city", q.Geo.City, "state", q.Geo.State)

	plan := o.planStage(ctx, result, q, queryText)
	candidates := o.discoverStage(ctx, result, plan)
	audits := o.auditStage(ctx, result, plan, candidates)
	o.scoreStage(result, q, candidates, audits)
	o.synthesizeStage(ctx, result)

	o.checkResultMinimum(result, q)

	result.PipelineSuccess = len(result.Leads) > 0
	result.FinishedAt = time.Now().UTC()

	o.logger.Info("run finished",
		"run_id", result.RunID,
		"leads", len(result.Leads),
		"errors", len(result.Errors),
		"success", result.PipelineSuccess,
		"elapsed", result.FinishedAt.Sub(result.StartedAt),
	)
	return result
}

// planStage obtains the verification plan. A missing planner is the normal
// degraded path and logs no error; a failing one logs a Planning error and
// the run proceeds on the fixed default plan.
func (o *Orchestrator) planStage(ctx context.Context, result *model.RunResult, q *model.Query, queryText string) model.VerificationPlan {
	if o.planner == nil || strings.TrimSpace(queryText) == "" {
		return planner.DefaultPlan(q)
	}
	plan, err := o.planner.Plan(ctx, queryText)
	if err != nil {
		o.logger.Warn("planning failed, using default plan", "run_id", result.RunID, "error", err)
		result.AddStageError(model.StagePlanning, err)
		return planner.DefaultPlan(q)
	}
	return plan
}

// discoverStage runs every plan query against the discoverer and ingests
// the merged candidate list. Per-query failures are contained; candidates
// are deduplicated on (name, address) and assigned sequential IDs so the
// final ranking has a deterministic tie-break.
func (o *Orchestrator) discoverStage(ctx context.Context, result *model.RunResult, plan model.VerificationPlan) []model.Candidate {
	var candidates []model.Candidate
	seen := make(map[string]struct{})

	for _, query := range plan.PlacesQueries {
		found, err := o.discoverer.Search(ctx, query)
		if err != nil {
			o.logger.Warn("discovery query failed", "run_id", result.RunID, "query", query, "error", err)
			result.AddStageError(model.StageDiscovering, err)
			continue
		}
		for _, c := range found {
			key := strings.ToLower(c.Name) + "|" + strings.ToLower(c.Address)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			c.ID = fmt.Sprintf("cand-%04d", len(candidates)+1)
			candidates = append(candidates, c)
		}
	}

	o.logger.Info("discovery complete", "run_id", result.RunID, "candidates", len(candidates))
	return candidates
}

// scoreStage filters candidates against the query's constraints, scores the
// survivors, attaches package suggestions, and ranks the leads. Pure stage:
// it cannot fail, so it logs no stage errors.
func (o *Orchestrator) scoreStage(result *model.RunResult, q *model.Query, candidates []model.Candidate, audits []*model.AuditResult) {
	weights := o.weights
	if q.Scoring != nil && q.Scoring.Weights != nil {
		weights = *q.Scoring.Weights
	}

	leads := make([]model.Lead, 0, len(candidates))
	for i, c := range candidates {
		var audit *model.AuditResult
		if i < len(audits) {
			audit = audits[i]
		}

		if !scoring.PassesMust(q.Constraints, c, audit) {
			continue
		}
		if scoring.IsExcluded(q.Constraints, c, audit) {
			continue
		}

		score, subscores, reasons := scoring.Score(scoring.Input{
			Candidate:       c,
			Audit:           audit,
			Vertical:        q.Vertical,
			OptionalMatches: scoring.OptionalMatches(q.Constraints, c, audit),
			Weights:         weights,
		})

		lead := model.Lead{
			Candidate:   c,
			Audit:       audit,
			Score:       score,
			Subscores:   subscores,
			ReasonCodes: reasons,
		}
		lead.Suggestions = scoring.Recommend(lead)
		leads = append(leads, lead)
	}

	scoring.RankLeads(leads)
	if target := q.ResultSize.Target; target > 0 && len(leads) > target {
		leads = leads[:target]
	}
	result.Leads = leads
}

// synthesizeStage attaches run rationale. A missing synthesizer degrades
// silently; a failing one logs a Synthesizing error. Either way the result
// always carries a synthesis.
func (o *Orchestrator) synthesizeStage(ctx context.Context, result *model.RunResult) {
	if o.synthesizer == nil {
		syn := planner.FallbackSynthesis(result.Leads)
		result.Synthesis = &syn
		return
	}
	syn, err := o.synthesizer.Synthesize(ctx, result.Leads, result.Errors)
	if err != nil {
		o.logger.Warn("synthesis failed, using fallback", "run_id", result.RunID, "error", err)
		result.AddStageError(model.StageSynthesizing, err)
		syn = planner.FallbackSynthesis(result.Leads)
	}
	result.Synthesis = &syn
}

// checkResultMinimum records the advisory warning when a requested minimum
// lead count was not met.
func (o *Orchestrator) checkResultMinimum(result *model.RunResult, q *model.Query) {
	if q.ResultSize.Minimum == nil {
		return
	}
	if min := *q.ResultSize.Minimum; len(result.Leads) < min {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("run produced %d leads, below the requested minimum of %d", len(result.Leads), min))
	}
}
