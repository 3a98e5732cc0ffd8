package pipeline_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/generate"
	"github.com/mrz1836/forge/internal/pipeline"
	"github.com/mrz1836/forge/internal/review"
	"github.com/mrz1836/forge/internal/testutil"
)

var errDesignerDown = testutil.ErrMockWorker

func findings(sev domain.Severity, n int) []domain.Finding {
	out := make([]domain.Finding, n)
	for i := range out {
		out[i] = domain.Finding{
			Category:          "security",
			Severity:          sev,
			Title:             fmt.Sprintf("%s issue %d", sev, i),
			Description:       "found during review",
			AffectedComponent: "api",
		}
	}
	return out
}

// scriptedRoster returns a six-analyzer roster whose first analyzer reports
// perReview[i] on the i-th review (the last entry repeats); the rest are clean.
func scriptedRoster(perReview ...[]domain.Finding) review.Roster {
	var calls atomic.Int32
	scripted := review.AnalyzerFunc(func(context.Context, domain.StageArtifact) (domain.AnalyzerResult, error) {
		if len(perReview) == 0 {
			return domain.AnalyzerResult{}, nil
		}
		i := min(int(calls.Add(1))-1, len(perReview)-1)
		return domain.AnalyzerResult{IssuesFound: perReview[i]}, nil
	})
	clean := review.AnalyzerFunc(func(context.Context, domain.StageArtifact) (domain.AnalyzerResult, error) {
		return domain.AnalyzerResult{}, nil
	})

	names := review.StandardAnalyzerNames()
	roster := review.Roster{{Name: names[0], Analyzer: scripted}}
	for _, name := range names[1:] {
		roster = append(roster, review.Member{Name: name, Analyzer: clean})
	}
	return roster
}

// harness counts worker calls and records inputs.
type harness struct {
	designCalls, codeCalls, testCalls, postmortemCalls int
	designInputs                                       []pipeline.DesignInput
	codeInputs                                         []pipeline.CodeInput

	// testResults[i] is the pass/fail outcome of the i-th test run; the last entry repeats.
	testResults []bool
	designErr   error
}

func (h *harness) workers(designRoster, codeRoster review.Roster) pipeline.Workers {
	return pipeline.Workers{
		Planner: pipeline.PlannerFunc(func(_ context.Context, in pipeline.PlanInput) (*domain.ProjectPlan, error) {
			return &domain.ProjectPlan{ProjectID: "p1", Summary: in.Requirements}, nil
		}),
		Designer: pipeline.DesignerFunc(func(_ context.Context, in pipeline.DesignInput) (*domain.DesignSpec, error) {
			h.designCalls++
			h.designInputs = append(h.designInputs, in)
			if h.designErr != nil {
				return nil, h.designErr
			}
			return &domain.DesignSpec{ProjectID: "p1", Overview: fmt.Sprintf("design v%d", in.Attempt)}, nil
		}),
		Coder: pipeline.CoderFunc(func(_ context.Context, in pipeline.CodeInput) (*domain.GeneratedCodeBundle, error) {
			h.codeCalls++
			h.codeInputs = append(h.codeInputs, in)
			return &domain.GeneratedCodeBundle{ProjectID: "p1", TotalFiles: h.codeCalls}, nil
		}),
		Tester: pipeline.TesterFunc(func(context.Context, pipeline.TestInput) (*domain.TestReport, error) {
			h.testCalls++
			pass := true
			if len(h.testResults) > 0 {
				pass = h.testResults[min(h.testCalls-1, len(h.testResults)-1)]
			}
			if pass {
				return &domain.TestReport{TotalTests: 4, PassedTests: 4}, nil
			}
			return &domain.TestReport{
				TotalTests:  4,
				PassedTests: 3,
				FailedTests: 1,
				Failures:    []domain.TestFailure{{Name: "TestCreate", Message: "expected 201"}},
			}, nil
		}),
		Postmortem: pipeline.PostmortemWriterFunc(func(_ context.Context, in pipeline.PostmortemInput) (*domain.PostmortemReport, error) {
			h.postmortemCalls++
			return &domain.PostmortemReport{Summary: "done", DefectCount: len(in.Overrides)}, nil
		}),
		DesignAnalyzers: designRoster,
		CodeAnalyzers:   codeRoster,
	}
}

func newOrchestrator(t *testing.T, workers pipeline.Workers, opts ...pipeline.Option) *pipeline.Orchestrator {
	t.Helper()
	opts = append([]pipeline.Option{pipeline.WithLogger(zerolog.Nop())}, opts...)
	o, err := pipeline.NewOrchestrator(workers, opts...)
	require.NoError(t, err)
	return o
}

func phases(res *domain.PipelineExecutionResult) []string {
	out := make([]string, len(res.PhaseLog))
	for i, e := range res.PhaseLog {
		out[i] = fmt.Sprintf("%s:%s", e.Phase, e.Status)
	}
	return out
}

func TestExecute_CleanRunPasses(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{TaskID: "task-1", Requirements: "todo api"}, nil)

	require.NoError(t, err)
	assert.Equal(t, constants.VerdictPass, res.OverallStatus)
	assert.Equal(t, constants.VerdictPass, res.DesignVerdict)
	assert.Equal(t, constants.VerdictPass, res.CodeVerdict)
	assert.Equal(t, constants.VerdictPass, res.TestVerdict)
	assert.Equal(t, 0, res.DesignReview.CriticalIssueCount)
	assert.Equal(t, 1, res.DesignIterations)
	assert.Equal(t, 1, res.CodeIterations)
	assert.Equal(t, 0, res.TestRetries)
	assert.Empty(t, res.Overrides)
	assert.NotNil(t, res.Plan)
	assert.NotNil(t, res.Postmortem)
	assert.Equal(t, "task-1", res.TaskID)
	assert.Equal(t, constants.ResultSchemaVersion, res.SchemaVersion)
	assert.False(t, res.CompletedAt.Before(res.StartedAt))
	assert.Equal(t, []string{
		"plan:started", "plan:completed",
		"design:started", "design:reviewing", "design:completed",
		"code:started", "code:reviewing", "code:completed",
		"test:started", "test:completed",
		"postmortem:started", "postmortem:completed",
	}, phases(res))
	assert.Equal(t, 0, o.Registry().Len(), "run unregistered on completion")
}

func TestExecute_AssignsTaskID(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Len(t, res.TaskID, 36)
}

func TestExecute_DesignNeedsImprovementAdvancesWithoutCorrection(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(findings(domain.SeverityMedium, 2)), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, h.designCalls)
	assert.Equal(t, constants.VerdictNeedsImprovement, res.DesignVerdict)
	assert.Equal(t, constants.VerdictConditionalPass, res.OverallStatus)
}

func TestExecute_DesignOneCriticalFailsReview(t *testing.T) {
	h := &harness{}
	designRoster := scriptedRoster(findings(domain.SeverityCritical, 1), nil)
	o := newOrchestrator(t, h.workers(designRoster, scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, h.designCalls, "regenerated once after the critical finding")
	assert.Equal(t, 2, res.DesignIterations)
	assert.Equal(t, constants.VerdictPass, res.DesignVerdict)
	require.Len(t, h.designInputs, 2)
	assert.Nil(t, h.designInputs[0].PreviousReview)
	require.NotNil(t, h.designInputs[1].PreviousReview)
	assert.Equal(t, 1, h.designInputs[1].PreviousReview.CriticalIssueCount)
	assert.Equal(t, constants.VerdictFail, h.designInputs[1].PreviousReview.Verdict)
	assert.Contains(t, phases(res), "design:retrying")
}

func TestExecute_DesignGateExhausted(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(findings(domain.SeverityCritical, 1)), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrQualityGateFailed)
	qe, ok := forgeerrors.AsQualityGateError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.GateDesign, qe.Gate)
	assert.Equal(t, 1, qe.CriticalCount)
	assert.Equal(t, 3, qe.Iterations)

	require.NotNil(t, res, "partial result returned with the error")
	assert.Equal(t, constants.VerdictFail, res.OverallStatus)
	assert.Equal(t, constants.VerdictFail, res.DesignVerdict)
	assert.Equal(t, 3, h.designCalls)
	assert.Equal(t, 0, h.codeCalls)
	assert.Nil(t, res.Postmortem)
	last := res.PhaseLog[len(res.PhaseLog)-1]
	assert.Equal(t, constants.StageDesign, last.Phase)
	assert.Equal(t, constants.PhaseFailed, last.Status)
}

func TestExecute_HITLOverrideAdvances(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(findings(domain.SeverityCritical, 2)), scriptedRoster()))

	var asked []string
	approver := func(gate string, report *domain.ReviewReport) bool {
		asked = append(asked, gate)
		return report.CriticalIssueCount == 2
	}

	res, err := o.Execute(context.Background(), pipeline.Request{}, approver)

	require.NoError(t, err)
	assert.Equal(t, []string{pipeline.GateDesign}, asked)
	assert.Equal(t, 1, h.designCalls, "approval skips correction")
	require.Len(t, res.Overrides, 1)
	ov := res.Overrides[0]
	assert.Equal(t, pipeline.GateDesign, ov.GateName)
	assert.Equal(t, constants.HITLApproved, ov.Decision)
	assert.Equal(t, 2, ov.CriticalCount)
	assert.Equal(t, res.DesignReview.ReviewID, ov.ReviewID)
	assert.Contains(t, phases(res), "design:overridden")

	// The reviewer's verdict is kept; the override record explains why the run advanced.
	assert.Equal(t, constants.VerdictFail, res.DesignVerdict)
	assert.Equal(t, constants.VerdictFail, res.OverallStatus)
	assert.Equal(t, 1, h.postmortemCalls)
	assert.Equal(t, 1, res.Postmortem.DefectCount, "postmortem sees the override")
}

func TestExecute_ApproverDeclinesThenRegenerates(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(findings(domain.SeverityCritical, 1), nil), scriptedRoster()))

	calls := 0
	res, err := o.Execute(context.Background(), pipeline.Request{}, func(string, *domain.ReviewReport) bool {
		calls++
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, res.Overrides)
	assert.Equal(t, 2, h.designCalls)
}

func TestExecute_CodeVerdicts(t *testing.T) {
	tests := []struct {
		name       string
		codeRoster review.Roster
		wantErr    bool
		verdict    constants.Verdict
		overall    constants.Verdict
		codeCalls  int
		iterations int
	}{
		{
			name:       "three highs conditional pass",
			codeRoster: scriptedRoster(findings(domain.SeverityHigh, 3)),
			verdict:    constants.VerdictConditionalPass,
			overall:    constants.VerdictConditionalPass,
			codeCalls:  1,
			iterations: 1,
		},
		{
			name:       "five highs fail every iteration",
			codeRoster: scriptedRoster(findings(domain.SeverityHigh, 5)),
			wantErr:    true,
			verdict:    constants.VerdictFail,
			overall:    constants.VerdictFail,
			codeCalls:  3,
			iterations: 3,
		},
		{
			name:       "five highs then clean",
			codeRoster: scriptedRoster(findings(domain.SeverityHigh, 5), nil),
			verdict:    constants.VerdictPass,
			overall:    constants.VerdictPass,
			codeCalls:  2,
			iterations: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &harness{}
			o := newOrchestrator(t, h.workers(scriptedRoster(), tc.codeRoster))

			res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

			if tc.wantErr {
				qe, ok := forgeerrors.AsQualityGateError(err)
				require.True(t, ok)
				assert.Equal(t, pipeline.GateCode, qe.Gate)
				assert.Equal(t, 5, qe.HighCount)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.verdict, res.CodeVerdict)
			assert.Equal(t, tc.overall, res.OverallStatus)
			assert.Equal(t, tc.codeCalls, h.codeCalls)
			assert.Equal(t, tc.iterations, res.CodeIterations)
		})
	}
}

func TestExecute_TestFailuresExhaustRetriesWithoutError(t *testing.T) {
	h := &harness{testResults: []bool{false}}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, h.testCalls, "initial run plus two retries")
	assert.Equal(t, 3, h.codeCalls, "gated generation plus one per retry")
	assert.Equal(t, 2, res.TestRetries)
	assert.Equal(t, constants.VerdictFail, res.TestVerdict)
	assert.Equal(t, constants.VerdictFail, res.OverallStatus)
	assert.Equal(t, 1, h.postmortemCalls)
	assert.False(t, res.Test.Passed())
	assert.Equal(t, 3, res.Code.TotalFiles, "last regenerated bundle is kept")
	assert.Equal(t, 1, res.CodeIterations, "test-driven regeneration bypasses the code gate")

	require.Len(t, h.codeInputs, 3)
	assert.Nil(t, h.codeInputs[0].FailedTests)
	assert.NotNil(t, h.codeInputs[1].FailedTests)
	assert.Contains(t, phases(res), "test:failed")
}

func TestExecute_TestPassesAfterRetry(t *testing.T) {
	h := &harness{testResults: []bool{false, true}}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, h.testCalls)
	assert.Equal(t, 1, res.TestRetries)
	assert.Equal(t, constants.VerdictPass, res.TestVerdict)
	assert.Equal(t, constants.VerdictPass, res.OverallStatus)
}

func TestExecute_ZeroTestRetries(t *testing.T) {
	h := &harness{testResults: []bool{false}}
	opts := pipeline.DefaultOptions()
	opts.TestMaxRetries = 0
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()), pipeline.WithOptions(opts))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, h.testCalls)
	assert.Equal(t, constants.VerdictFail, res.TestVerdict)
}

func TestExecute_WorkerErrorPropagates(t *testing.T) {
	h := &harness{designErr: errDesignerDown}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrWorkerFailed)
	require.ErrorIs(t, err, errDesignerDown)
	var we *forgeerrors.WorkerError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "design", we.Stage)
	assert.Equal(t, 1, h.designCalls, "worker errors are not retried")
	assert.Equal(t, constants.VerdictFail, res.OverallStatus)
}

func TestExecute_NilArtifactIsWorkerFailure(t *testing.T) {
	h := &harness{}
	workers := h.workers(scriptedRoster(), scriptedRoster())
	workers.Designer = pipeline.DesignerFunc(func(context.Context, pipeline.DesignInput) (*domain.DesignSpec, error) {
		return nil, nil
	})
	o := newOrchestrator(t, workers)

	_, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrWorkerFailed)
	require.ErrorIs(t, err, forgeerrors.ErrNilArtifact)
}

func TestExecute_NilTestReportIsWorkerFailure(t *testing.T) {
	h := &harness{}
	workers := h.workers(scriptedRoster(), scriptedRoster())
	workers.Tester = pipeline.TesterFunc(func(context.Context, pipeline.TestInput) (*domain.TestReport, error) {
		return nil, nil
	})
	o := newOrchestrator(t, workers)

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrWorkerFailed)
	require.ErrorIs(t, err, forgeerrors.ErrNilArtifact)
	var workerErr *forgeerrors.WorkerError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, constants.StageTest.String(), workerErr.Stage)
	require.NotNil(t, res)
	assert.Nil(t, res.Test)
	assert.Equal(t, constants.VerdictFail, res.OverallStatus)
}

func TestExecute_NilRegeneratedCodeIsWorkerFailure(t *testing.T) {
	h := &harness{testResults: []bool{false, true}}
	workers := h.workers(scriptedRoster(), scriptedRoster())
	reviewed := workers.Coder
	workers.Coder = pipeline.CoderFunc(func(ctx context.Context, in pipeline.CodeInput) (*domain.GeneratedCodeBundle, error) {
		if in.FailedTests != nil {
			return nil, nil
		}
		return reviewed.Code(ctx, in)
	})
	o := newOrchestrator(t, workers)

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrNilArtifact)
	var workerErr *forgeerrors.WorkerError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, constants.StageCode.String(), workerErr.Stage)
	require.NotNil(t, res)
	assert.NotNil(t, res.Code, "the reviewed bundle is kept")
	assert.Equal(t, 1, h.testCalls)
	assert.Equal(t, constants.VerdictFail, res.OverallStatus)
}

func TestExecute_TotalIterationBudget(t *testing.T) {
	h := &harness{}
	opts := pipeline.DefaultOptions()
	opts.MaxTotalIterations = 2
	o := newOrchestrator(t,
		h.workers(scriptedRoster(findings(domain.SeverityCritical, 1)), scriptedRoster()),
		pipeline.WithOptions(opts),
	)

	_, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrTotalIterationsExceeded)
	assert.Equal(t, 2, h.designCalls)
}

func TestExecute_GateMaxIterationsInvariant(t *testing.T) {
	h := &harness{}
	opts := pipeline.DefaultOptions()
	opts.DesignMaxIterations = 0
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()), pipeline.WithOptions(opts))

	_, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.ErrorIs(t, err, forgeerrors.ErrMaxIterationsExceeded)
	assert.Equal(t, 0, h.designCalls)
}

func TestExecute_CanceledContext(t *testing.T) {
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Execute(ctx, pipeline.Request{}, nil)

	require.ErrorIs(t, err, context.Canceled)
}

func TestExecute_DuplicateTaskIDRejectedWhileRunning(t *testing.T) {
	h := &harness{}
	workers := h.workers(scriptedRoster(), scriptedRoster())
	entered := make(chan struct{})
	release := make(chan struct{})
	workers.Planner = pipeline.PlannerFunc(func(context.Context, pipeline.PlanInput) (*domain.ProjectPlan, error) {
		close(entered)
		<-release
		return &domain.ProjectPlan{}, nil
	})
	o := newOrchestrator(t, workers)

	done := make(chan error, 1)
	go func() {
		_, err := o.Execute(context.Background(), pipeline.Request{TaskID: "dup"}, nil)
		done <- err
	}()
	<-entered

	info, ok := o.Registry().Get("dup")
	require.True(t, ok)
	assert.Equal(t, constants.StagePlan, info.Stage)

	res, err := o.Execute(context.Background(), pipeline.Request{TaskID: "dup"}, nil)
	require.ErrorIs(t, err, forgeerrors.ErrRunAlreadyActive)
	assert.Nil(t, res)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
	assert.Equal(t, 0, o.Registry().Len())
}

func TestExecute_SharedRegistry(t *testing.T) {
	reg := pipeline.NewRegistry()
	h := &harness{}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()), pipeline.WithRegistry(reg))

	assert.Same(t, reg, o.Registry())
}

func TestExecute_WithGeneratorCoder(t *testing.T) {
	manifest := `{"files":[{"file_path":"main.go","estimated_lines":5},{"file_path":"internal/todo/todo.go","estimated_lines":30}]}`
	gen := generate.NewGenerator(generate.DefaultConfig(), generate.Producers{
		Manifest: generate.ManifestProducerFunc(func(context.Context, *domain.DesignSpec, string) (string, error) {
			return manifest, nil
		}),
		File: generate.FileProducerFunc(func(_ context.Context, req generate.FileRequest) (string, error) {
			return "```go\npackage main\n\n// " + req.File.FilePath + " generated\nfunc main() {}\n```", nil
		}),
	}, zerolog.Nop())

	h := &harness{}
	workers := h.workers(scriptedRoster(), scriptedRoster())
	workers.Coder = pipeline.GeneratorCoder(gen)
	o := newOrchestrator(t, workers)

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	require.NotNil(t, res.Code)
	assert.Equal(t, 2, res.Code.TotalFiles)
	assert.Equal(t, 6, res.Code.TotalLinesOfCode)
	assert.Equal(t, constants.VerdictPass, res.OverallStatus)
}

func TestNewOrchestrator_MissingWorkers(t *testing.T) {
	_, err := pipeline.NewOrchestrator(pipeline.Workers{})

	require.ErrorIs(t, err, forgeerrors.ErrWorkerNotConfigured)
	assert.Contains(t, err.Error(), "planner")
	assert.Contains(t, err.Error(), "code analyzers")
}

// stubReviewer returns fixed verdicts to drive the gate loop without analyzers.
type stubReviewer struct {
	verdicts []constants.Verdict
	calls    int
}

func (s *stubReviewer) Review(_ context.Context, taskID string, artifact domain.StageArtifact, _ review.Roster) (*domain.ReviewReport, error) {
	v := s.verdicts[min(s.calls, len(s.verdicts)-1)]
	s.calls++
	return &domain.ReviewReport{
		TaskID:   taskID,
		ReviewID: fmt.Sprintf("%s-%d", artifact.Stage(), s.calls),
		Verdict:  v,
	}, nil
}

func TestExecute_WithReviewer(t *testing.T) {
	h := &harness{}
	stub := &stubReviewer{verdicts: []constants.Verdict{constants.VerdictNeedsImprovement, constants.VerdictConditionalPass}}
	o := newOrchestrator(t, h.workers(scriptedRoster(), scriptedRoster()), pipeline.WithReviewer(stub))

	res, err := o.Execute(context.Background(), pipeline.Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, "design-1", res.DesignReview.ReviewID)
	assert.Equal(t, "code-2", res.CodeReview.ReviewID)
	assert.Equal(t, constants.VerdictConditionalPass, res.OverallStatus)
}
