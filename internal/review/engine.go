package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// EngineConfig holds configuration for the review Engine.
type EngineConfig struct {
	// CodeHighThreshold is the High issue count at which the code gate fails.
	CodeHighThreshold int

	// AnalyzerTimeout bounds each analyzer call. Zero means no bound.
	AnalyzerTimeout time.Duration
}

// DefaultEngineConfig returns the default review settings.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CodeHighThreshold: constants.CodeHighIssueThreshold,
	}
}

// Engine runs one review: dispatch, join, merge, verdict.
// An Engine holds no per-review state and is safe for concurrent use.
type Engine struct {
	config EngineConfig
	logger zerolog.Logger
	clock  clock.Clock
	seq    *clock.Sequence
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used for timestamps and review IDs.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
		e.seq = clock.NewSequence(c)
	}
}

// NewEngine creates a review engine.
func NewEngine(cfg EngineConfig, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		config: cfg,
		logger: logger,
		clock:  clock.RealClock{},
	}
	e.seq = clock.NewSequence(e.clock)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PolicyFor returns the gate policy that applies to artifacts of the given stage.
func (e *Engine) PolicyFor(stage constants.Stage) (domain.ReviewKind, Policy, error) {
	switch stage {
	case constants.StageDesign:
		return domain.ReviewKindDesign, DesignPolicy{}, nil
	case constants.StageCode:
		return domain.ReviewKindCode, CodePolicy{HighThreshold: e.config.CodeHighThreshold}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", forgeerrors.ErrUnsupportedArtifact, stage)
	}
}

// slot holds what one analyzer contributed.
type slot struct {
	result domain.AnalyzerResult
	err    error
}

// Review dispatches the artifact to every analyzer in the roster concurrently,
// waits for all of them, and aggregates the results into a ReviewReport.
//
// An analyzer that returns an error, panics, or times out contributes nothing;
// its failure is logged and listed on the report. Review itself only fails on
// invalid input: a nil artifact, an empty roster, or a stage without a gate.
func (e *Engine) Review(ctx context.Context, taskID string, artifact domain.StageArtifact, roster Roster) (*domain.ReviewReport, error) {
	if domain.IsNilArtifact(artifact) {
		return nil, forgeerrors.ErrNilArtifact
	}
	if len(roster) == 0 {
		return nil, forgeerrors.ErrEmptyRoster
	}
	kind, policy, err := e.PolicyFor(artifact.Stage())
	if err != nil {
		return nil, err
	}

	start := e.clock.Now()
	reviewID := fmt.Sprintf("%s-review-%d", kind, e.seq.Next())
	log := e.logger.With().
		Str("task_id", taskID).
		Str("review_id", reviewID).
		Str("kind", string(kind)).
		Logger()

	log.Info().Int("analyzer_count", len(roster)).Msg("dispatching review")

	slots := e.dispatch(ctx, artifact, roster)

	issueLists := make([][]domain.Finding, 0, len(roster))
	suggestionLists := make([][]domain.Finding, 0, len(roster))
	var failures []domain.AnalyzerFailure
	for i, s := range slots {
		if s.err != nil {
			log.Warn().
				Err(s.err).
				Str("analyzer", roster[i].Name).
				Msg("analyzer failed, treating contribution as empty")
			failures = append(failures, domain.AnalyzerFailure{
				Analyzer: roster[i].Name,
				Error:    s.err.Error(),
			})
			continue
		}
		issueLists = append(issueLists, withIDs(s.result.IssuesFound))
		suggestionLists = append(suggestionLists, withIDs(s.result.ImprovementSuggestions))
	}

	issues := MergeIssues(issueLists...)
	counts := Tally(issues)
	verdict := policy.Verdict(counts)
	end := e.clock.Now()

	report := &domain.ReviewReport{
		TaskID:             taskID,
		ReviewID:           reviewID,
		Kind:               kind,
		Issues:             issues,
		Suggestions:        MergeSuggestions(suggestionLists...),
		CriticalIssueCount: counts.Critical,
		HighIssueCount:     counts.High,
		MediumIssueCount:   counts.Medium,
		LowIssueCount:      counts.Low,
		Verdict:            verdict,
		AnalyzerCount:      len(roster),
		AnalyzerFailures:   failures,
		DurationMs:         end.Sub(start).Milliseconds(),
		CreatedAt:          end.UTC(),
	}

	log.Info().
		Str("verdict", verdict.String()).
		Int("critical", counts.Critical).
		Int("high", counts.High).
		Int("medium", counts.Medium).
		Int("low", counts.Low).
		Int("analyzer_failures", len(failures)).
		Int64("duration_ms", report.DurationMs).
		Msg("review complete")

	return report, nil
}

// dispatch runs every analyzer and joins on all of them. Each goroutine owns
// exactly one slot and its own copy of the artifact, so no locking is needed
// and results stay in roster order.
func (e *Engine) dispatch(ctx context.Context, artifact domain.StageArtifact, roster Roster) []slot {
	slots := make([]slot, len(roster))

	var g errgroup.Group
	for i, member := range roster {
		own := artifact.Clone()
		g.Go(func() error {
			slots[i] = e.runAnalyzer(ctx, own, member)
			return nil // failures are recorded per slot, never cancel siblings
		})
	}
	_ = g.Wait()

	return slots
}

func (e *Engine) runAnalyzer(ctx context.Context, artifact domain.StageArtifact, member Member) (s slot) {
	defer func() {
		if r := recover(); r != nil {
			s = slot{err: fmt.Errorf("%w: %s panicked: %v", forgeerrors.ErrAnalyzerFailed, member.Name, r)}
		}
	}()

	if member.Analyzer == nil {
		return slot{err: fmt.Errorf("%w: %s has no implementation", forgeerrors.ErrAnalyzerFailed, member.Name)}
	}

	if e.config.AnalyzerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.AnalyzerTimeout)
		defer cancel()
	}

	result, err := member.Analyzer.Analyze(ctx, artifact)
	if err != nil {
		return slot{err: fmt.Errorf("%w: %s: %w", forgeerrors.ErrAnalyzerFailed, member.Name, err)}
	}
	return slot{result: result}
}

// withIDs returns a copy of findings where every finding without an ID gets one.
func withIDs(findings []domain.Finding) []domain.Finding {
	out := make([]domain.Finding, len(findings))
	for i, f := range findings {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		out[i] = f
	}
	return out
}
