package pipeline

import (
	"context"
	"fmt"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/review"
)

// gate describes one reviewed stage.
type gate[T domain.StageArtifact] struct {
	stage         constants.Stage
	name          string
	maxIterations int
	roster        review.Roster
	produce       func(ctx context.Context, attempt int, prev *domain.ReviewReport) (T, error)
}

// gateOutcome is what a gate loop ended with. report is the last review.
type gateOutcome[T domain.StageArtifact] struct {
	artifact   T
	report     *domain.ReviewReport
	iterations int
}

// runGate generates, reviews, and decides until the gate resolves:
//
//   - PASS, NEEDS_IMPROVEMENT, CONDITIONAL_PASS advance without correction
//   - FAIL with approval advances and records an override
//   - FAIL with iterations left regenerates from scratch
//   - FAIL otherwise is a QualityGateError
func runGate[T domain.StageArtifact](ctx context.Context, r *run, g gate[T]) (gateOutcome[T], error) {
	var out gateOutcome[T]
	log := r.log.With().Str("gate", g.name).Logger()

	for iteration := 1; iteration <= g.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if err := r.spend(g.stage); err != nil {
			return out, err
		}
		out.iterations = iteration

		status := constants.PhaseStarted
		if iteration > 1 {
			status = constants.PhaseRetrying
		}
		r.phase(g.stage, status, iteration, "")

		artifact, err := g.produce(ctx, iteration, out.report)
		if err != nil {
			return out, r.workerFailed(g.stage, iteration, err)
		}
		if domain.IsNilArtifact(artifact) {
			return out, r.workerFailed(g.stage, iteration, forgeerrors.ErrNilArtifact)
		}
		out.artifact = artifact

		r.phase(g.stage, constants.PhaseReviewing, iteration, "")
		report, err := r.o.reviewer.Review(ctx, r.result.TaskID, artifact, g.roster)
		if err != nil {
			r.phase(g.stage, constants.PhaseFailed, iteration, err.Error())
			return out, fmt.Errorf("%s review: %w", g.name, err)
		}
		out.report = report

		log.Info().
			Int("iteration", iteration).
			Str("verdict", report.Verdict.String()).
			Int("critical", report.CriticalIssueCount).
			Int("high", report.HighIssueCount).
			Msg("gate evaluated")

		if !report.Verdict.IsBlocking() {
			r.phase(g.stage, constants.PhaseCompleted, iteration, report.Verdict.String())
			return out, nil
		}

		if r.approver != nil && r.approver(g.name, report) {
			r.override(g.name, report, r.o.clock.Now())
			r.phase(g.stage, constants.PhaseOverridden, iteration, "approved by human reviewer")
			log.Warn().
				Str("review_id", report.ReviewID).
				Int("critical", report.CriticalIssueCount).
				Int("high", report.HighIssueCount).
				Msg("failed gate overridden")
			return out, nil
		}

		if iteration < g.maxIterations {
			log.Info().Int("iteration", iteration).Msg("gate failed, regenerating")
			continue
		}

		r.phase(g.stage, constants.PhaseFailed, iteration, report.Verdict.String())
		return out, &forgeerrors.QualityGateError{
			Gate:          g.name,
			CriticalCount: report.CriticalIssueCount,
			HighCount:     report.HighIssueCount,
			Iterations:    iteration,
		}
	}

	r.phase(g.stage, constants.PhaseFailed, out.iterations, "no gate decision")
	return out, &forgeerrors.MaxIterationsError{Stage: g.stage.String(), Limit: g.maxIterations}
}
