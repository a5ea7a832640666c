package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leadlens/leadlens/internal/model"
)

// auditStage fans audits out over the candidate set with bounded
// concurrency. The candidate set is capped first (cost control), then each
// capped candidate gets exactly one audit slot; the returned slice is
// indexed like the candidate slice, with nil past the cap.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it is simpler and handles the concurrency limit correctly. Each
// audit writes into its pre-allocated slot under the mutex, so result order
// never depends on completion order.
func (o *Orchestrator) auditStage(ctx context.Context, result *model.RunResult, plan model.VerificationPlan, candidates []model.Candidate) []*model.AuditResult {
	audits := make([]*model.AuditResult, len(candidates))
	if len(candidates) == 0 {
		return audits
	}

	capped := candidates
	if len(capped) > o.maxCandidates {
		capped = capped[:o.maxCandidates]
		o.logger.Info("candidate set capped for auditing",
			"run_id", result.RunID,
			"discovered", len(candidates),
			"audited", len(capped),
		)
	}

	auditor := o.auditorFactory(plan)
	startTime := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, candidate := range capped {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			audit := auditor.Audit(gctx, candidate.Website)

			mu.Lock()
			audits[i] = audit
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Cancellation mid-fan-out: audited candidates keep their results,
		// the rest stay nil, and the stage failure is recorded once.
		o.logger.Warn("audit fan-out interrupted", "run_id", result.RunID, "error", err)
		result.AddStageError(model.StageAuditing, err)
	}

	o.logger.Info("audit fan-out complete",
		"run_id", result.RunID,
		"audited", len(capped),
		"concurrency", o.concurrency,
		"elapsed", time.Since(startTime),
	)
	return audits
}
