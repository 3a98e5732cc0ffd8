// Package pipeline drives the generation pipeline: plan, design, code, test,
// postmortem. Design and code are gated by reviews with bounded correction
// loops and optional human approval; the test stage retries by regenerating
// code. Every transition is recorded on the run's phase log.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/review,
//     internal/generate, internal/clock, std lib
//   - MUST NOT import: internal/cli, internal/tui, internal/store
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/review"
)

// Gate names recorded on HITL overrides and quality gate errors.
const (
	GateDesign = "design"
	GateCode   = "code"
)

// Approver is consulted when a gate fails. Returning true overrides the
// failure and the pipeline advances.
type Approver func(gateName string, report *domain.ReviewReport) bool

// Request is one pipeline run's input.
type Request struct {
	// TaskID is optional; a UUID is assigned when empty.
	TaskID            string
	Requirements      string
	DesignConstraints string
	CodingStandards   string
}

// Reviewer evaluates a gated artifact against a roster.
// *review.Engine is the production implementation.
type Reviewer interface {
	Review(ctx context.Context, taskID string, artifact domain.StageArtifact, roster review.Roster) (*domain.ReviewReport, error)
}

// Options holds iteration budgets.
type Options struct {
	DesignMaxIterations int
	CodeMaxIterations   int
	TestMaxRetries      int

	// MaxTotalIterations caps design iterations, code iterations, and test
	// retries combined. Zero disables the cap.
	MaxTotalIterations int
}

// DefaultOptions returns the default iteration budgets.
func DefaultOptions() Options {
	return Options{
		DesignMaxIterations: constants.DesignMaxIterations,
		CodeMaxIterations:   constants.CodeMaxIterations,
		TestMaxRetries:      constants.TestMaxRetries,
		MaxTotalIterations:  constants.MaxTotalIterations,
	}
}

// Orchestrator sequences the stages of a run. Runs are independent; one
// Orchestrator can execute several concurrently.
type Orchestrator struct {
	workers  Workers
	options  Options
	reviewer Reviewer
	registry *Registry
	logger   zerolog.Logger
	clock    clock.Clock
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOptions sets the iteration budgets.
func WithOptions(opts Options) Option {
	return func(o *Orchestrator) {
		o.options = opts
	}
}

// WithReviewer replaces the default review engine.
func WithReviewer(r Reviewer) Option {
	return func(o *Orchestrator) {
		o.reviewer = r
	}
}

// WithRegistry shares a run registry between orchestrators.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) {
		o.registry = r
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// NewOrchestrator creates an Orchestrator. Every worker and both analyzer
// rosters are required.
func NewOrchestrator(workers Workers, opts ...Option) (*Orchestrator, error) {
	if missing := workers.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", forgeerrors.ErrWorkerNotConfigured, strings.Join(missing, ", "))
	}

	o := &Orchestrator{
		workers: workers,
		options: DefaultOptions(),
		logger:  zerolog.Nop(),
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.reviewer == nil {
		o.reviewer = review.NewEngine(review.DefaultEngineConfig(), o.logger, review.WithClock(o.clock))
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	return o, nil
}

// Registry returns the run registry.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Execute runs the pipeline end to end.
//
// Gate outcomes are verdicts on the result, not errors. Execute fails with a
// WorkerError when a worker fails, a QualityGateError when a gate fails with
// no approval and no iterations left, or a MaxIterationsError when a loop
// ends without a decision. On failure the partial result is returned
// alongside the error with OverallStatus FAIL.
func (o *Orchestrator) Execute(ctx context.Context, req Request, approver Approver) (*domain.PipelineExecutionResult, error) {
	taskID := req.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}

	start := o.clock.Now().UTC()
	if err := o.registry.Register(taskID, start); err != nil {
		return nil, err
	}
	defer o.registry.Unregister(taskID)

	r := &run{
		o:        o,
		req:      req,
		approver: approver,
		log:      o.logger.With().Str("task_id", taskID).Logger(),
		result: &domain.PipelineExecutionResult{
			TaskID:        taskID,
			Requirements:  req.Requirements,
			PhaseLog:      make([]domain.PhaseLogEntry, 0),
			Overrides:     make([]domain.HITLOverrideRecord, 0),
			StartedAt:     start,
			SchemaVersion: constants.ResultSchemaVersion,
		},
	}

	r.log.Info().Msg("pipeline started")
	err := r.execute(ctx)
	r.finish(err)
	return r.result, err
}

// run holds the state of one Execute call. It is only touched by the
// goroutine that called Execute.
type run struct {
	o        *Orchestrator
	req      Request
	approver Approver
	log      zerolog.Logger
	result   *domain.PipelineExecutionResult

	// iterations counts design iterations, code iterations, and test retries.
	iterations int
}

func (r *run) execute(ctx context.Context) error {
	if err := r.planStage(ctx); err != nil {
		return err
	}
	if err := r.designStage(ctx); err != nil {
		return err
	}
	if err := r.codeStage(ctx); err != nil {
		return err
	}
	if err := r.testStage(ctx); err != nil {
		return err
	}
	return r.postmortemStage(ctx)
}

func (r *run) finish(err error) {
	res := r.result
	res.CompletedAt = r.o.clock.Now().UTC()
	res.DurationMs = res.CompletedAt.Sub(res.StartedAt).Milliseconds()

	if err != nil {
		res.OverallStatus = constants.VerdictFail
		r.log.Error().Err(err).Int64("duration_ms", res.DurationMs).Msg("pipeline failed")
		return
	}
	res.OverallStatus = DeriveOverallStatus(res.DesignVerdict, res.CodeVerdict, res.TestVerdict)
	r.log.Info().
		Str("overall_status", res.OverallStatus.String()).
		Str("design_verdict", res.DesignVerdict.String()).
		Str("code_verdict", res.CodeVerdict.String()).
		Str("test_verdict", res.TestVerdict.String()).
		Int("hitl_overrides", len(res.Overrides)).
		Int64("duration_ms", res.DurationMs).
		Msg("pipeline completed")
}

// phase appends a phase log entry and updates the registry.
func (r *run) phase(stage constants.Stage, status constants.PhaseStatus, attempt int, detail string) {
	r.result.PhaseLog = append(r.result.PhaseLog, domain.PhaseLogEntry{
		Phase:     stage,
		Status:    status,
		Attempt:   attempt,
		Detail:    detail,
		Timestamp: r.o.clock.Now().UTC(),
	})
	r.o.registry.SetStage(r.result.TaskID, stage)

	r.log.Debug().
		Str("phase", stage.String()).
		Str("status", status.String()).
		Int("attempt", attempt).
		Msg("phase transition")
}

// spend consumes one unit of the cross-stage iteration budget.
func (r *run) spend(stage constants.Stage) error {
	limit := r.o.options.MaxTotalIterations
	if limit > 0 && r.iterations >= limit {
		r.phase(stage, constants.PhaseFailed, 0, "total iteration budget exhausted")
		return fmt.Errorf("%w: %d iteration(s) used across stages", forgeerrors.ErrTotalIterationsExceeded, limit)
	}
	r.iterations++
	return nil
}

// workerFailed records and wraps a worker error.
func (r *run) workerFailed(stage constants.Stage, attempt int, err error) error {
	r.phase(stage, constants.PhaseFailed, attempt, err.Error())
	return forgeerrors.NewWorkerError(stage.String(), err)
}

func (r *run) planStage(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.phase(constants.StagePlan, constants.PhaseStarted, 1, "")
	plan, err := r.o.workers.Planner.Plan(ctx, PlanInput{
		TaskID:            r.result.TaskID,
		Requirements:      r.req.Requirements,
		DesignConstraints: r.req.DesignConstraints,
	})
	if err != nil {
		return r.workerFailed(constants.StagePlan, 1, err)
	}
	r.result.Plan = plan
	r.phase(constants.StagePlan, constants.PhaseCompleted, 1, "")
	return nil
}

func (r *run) designStage(ctx context.Context) error {
	g := gate[*domain.DesignSpec]{
		stage:         constants.StageDesign,
		name:          GateDesign,
		maxIterations: r.o.options.DesignMaxIterations,
		roster:        r.o.workers.DesignAnalyzers,
		produce: func(ctx context.Context, attempt int, prev *domain.ReviewReport) (*domain.DesignSpec, error) {
			return r.o.workers.Designer.Design(ctx, DesignInput{
				TaskID:            r.result.TaskID,
				Requirements:      r.req.Requirements,
				DesignConstraints: r.req.DesignConstraints,
				Plan:              r.result.Plan,
				Attempt:           attempt,
				PreviousReview:    prev,
			})
		},
	}

	out, err := runGate(ctx, r, g)
	r.result.DesignIterations = out.iterations
	if out.report != nil {
		r.result.DesignReview = out.report
		r.result.DesignVerdict = out.report.Verdict
	}
	if err != nil {
		return err
	}
	r.result.Design = out.artifact
	return nil
}

func (r *run) codeStage(ctx context.Context) error {
	g := gate[*domain.GeneratedCodeBundle]{
		stage:         constants.StageCode,
		name:          GateCode,
		maxIterations: r.o.options.CodeMaxIterations,
		roster:        r.o.workers.CodeAnalyzers,
		produce: func(ctx context.Context, attempt int, prev *domain.ReviewReport) (*domain.GeneratedCodeBundle, error) {
			return r.o.workers.Coder.Code(ctx, CodeInput{
				TaskID:          r.result.TaskID,
				Design:          r.result.Design,
				CodingStandards: r.req.CodingStandards,
				Attempt:         attempt,
				PreviousReview:  prev,
			})
		},
	}

	out, err := runGate(ctx, r, g)
	r.result.CodeIterations = out.iterations
	if out.report != nil {
		r.result.CodeReview = out.report
		r.result.CodeVerdict = out.report.Verdict
	}
	if err != nil {
		return err
	}
	r.result.Code = out.artifact
	return nil
}

// testStage runs the tests, regenerating code on failure while retries
// remain. Regenerated code is not reviewed again. Exhausting the retries is
// not an error: the last failing report is kept and the run continues.
func (r *run) testStage(ctx context.Context) error {
	for retry := 0; ; retry++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempt := retry + 1
		r.phase(constants.StageTest, constants.PhaseStarted, attempt, "")

		report, err := r.o.workers.Tester.Test(ctx, TestInput{
			TaskID:  r.result.TaskID,
			Design:  r.result.Design,
			Code:    r.result.Code,
			Attempt: attempt,
		})
		if err != nil {
			return r.workerFailed(constants.StageTest, attempt, err)
		}
		if report == nil {
			return r.workerFailed(constants.StageTest, attempt, forgeerrors.ErrNilArtifact)
		}
		r.result.Test = report
		r.result.TestVerdict = report.Verdict()
		r.result.TestRetries = retry

		if report.Passed() {
			r.phase(constants.StageTest, constants.PhaseCompleted, attempt, "")
			return nil
		}

		detail := fmt.Sprintf("%d of %d test(s) failed", report.FailedTests, report.TotalTests)
		if retry >= r.o.options.TestMaxRetries {
			r.phase(constants.StageTest, constants.PhaseFailed, attempt, detail+", retries exhausted")
			r.log.Warn().Int("test_retries", retry).Msg("tests still failing, continuing to postmortem")
			return nil
		}

		if err := r.spend(constants.StageTest); err != nil {
			return err
		}
		r.phase(constants.StageTest, constants.PhaseRetrying, attempt, detail)
		r.log.Info().Int("attempt", attempt).Msg("tests failed, regenerating code")

		code, err := r.o.workers.Coder.Code(ctx, CodeInput{
			TaskID:          r.result.TaskID,
			Design:          r.result.Design,
			CodingStandards: r.req.CodingStandards,
			Attempt:         r.result.CodeIterations + attempt,
			FailedTests:     report,
		})
		if err != nil {
			return r.workerFailed(constants.StageCode, attempt, err)
		}
		if code == nil {
			return r.workerFailed(constants.StageCode, attempt, forgeerrors.ErrNilArtifact)
		}
		r.result.Code = code
	}
}

func (r *run) postmortemStage(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.phase(constants.StagePostmortem, constants.PhaseStarted, 1, "")
	pm, err := r.o.workers.Postmortem.WritePostmortem(ctx, PostmortemInput{
		TaskID:       r.result.TaskID,
		Plan:         r.result.Plan,
		Design:       r.result.Design,
		Code:         r.result.Code,
		Test:         r.result.Test,
		DesignReview: r.result.DesignReview,
		CodeReview:   r.result.CodeReview,
		Overrides:    append([]domain.HITLOverrideRecord(nil), r.result.Overrides...),
	})
	if err != nil {
		return r.workerFailed(constants.StagePostmortem, 1, err)
	}
	r.result.Postmortem = pm
	r.phase(constants.StagePostmortem, constants.PhaseCompleted, 1, "")
	return nil
}

// override records a human approval past a failed gate.
func (r *run) override(gateName string, report *domain.ReviewReport, at time.Time) {
	r.result.Overrides = append(r.result.Overrides, domain.HITLOverrideRecord{
		GateName:      gateName,
		Decision:      constants.HITLApproved,
		ReviewID:      report.ReviewID,
		CriticalCount: report.CriticalIssueCount,
		HighCount:     report.HighIssueCount,
		Timestamp:     at.UTC(),
	})
}
