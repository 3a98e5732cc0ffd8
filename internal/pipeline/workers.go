package pipeline

import (
	"context"

	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/generate"
	"github.com/mrz1836/forge/internal/review"
)

// PlanInput is what the plan worker receives.
type PlanInput struct {
	TaskID            string
	Requirements      string
	DesignConstraints string
}

// DesignInput is what the design worker receives. PreviousReview is set on
// correction iterations; the worker regenerates from scratch either way.
type DesignInput struct {
	TaskID            string
	Requirements      string
	DesignConstraints string
	Plan              *domain.ProjectPlan
	Attempt           int
	PreviousReview    *domain.ReviewReport
}

// CodeInput is what the code worker receives. FailedTests is set when the
// code is regenerated after a failing test run.
type CodeInput struct {
	TaskID          string
	Design          *domain.DesignSpec
	CodingStandards string
	Attempt         int
	PreviousReview  *domain.ReviewReport
	FailedTests     *domain.TestReport
}

// TestInput is what the test worker receives.
type TestInput struct {
	TaskID  string
	Design  *domain.DesignSpec
	Code    *domain.GeneratedCodeBundle
	Attempt int
}

// PostmortemInput carries every artifact of the run.
type PostmortemInput struct {
	TaskID       string
	Plan         *domain.ProjectPlan
	Design       *domain.DesignSpec
	Code         *domain.GeneratedCodeBundle
	Test         *domain.TestReport
	DesignReview *domain.ReviewReport
	CodeReview   *domain.ReviewReport
	Overrides    []domain.HITLOverrideRecord
}

// Planner produces the project plan.
type Planner interface {
	Plan(ctx context.Context, in PlanInput) (*domain.ProjectPlan, error)
}

// Designer produces the design spec.
type Designer interface {
	Design(ctx context.Context, in DesignInput) (*domain.DesignSpec, error)
}

// Coder produces the code bundle.
type Coder interface {
	Code(ctx context.Context, in CodeInput) (*domain.GeneratedCodeBundle, error)
}

// Tester runs tests against a bundle. A failing run is a report, not an error.
type Tester interface {
	Test(ctx context.Context, in TestInput) (*domain.TestReport, error)
}

// PostmortemWriter produces the final report.
type PostmortemWriter interface {
	WritePostmortem(ctx context.Context, in PostmortemInput) (*domain.PostmortemReport, error)
}

// PlannerFunc adapts a function to Planner.
type PlannerFunc func(ctx context.Context, in PlanInput) (*domain.ProjectPlan, error)

// Plan calls f.
func (f PlannerFunc) Plan(ctx context.Context, in PlanInput) (*domain.ProjectPlan, error) {
	return f(ctx, in)
}

// DesignerFunc adapts a function to Designer.
type DesignerFunc func(ctx context.Context, in DesignInput) (*domain.DesignSpec, error)

// Design calls f.
func (f DesignerFunc) Design(ctx context.Context, in DesignInput) (*domain.DesignSpec, error) {
	return f(ctx, in)
}

// CoderFunc adapts a function to Coder.
type CoderFunc func(ctx context.Context, in CodeInput) (*domain.GeneratedCodeBundle, error)

// Code calls f.
func (f CoderFunc) Code(ctx context.Context, in CodeInput) (*domain.GeneratedCodeBundle, error) {
	return f(ctx, in)
}

// TesterFunc adapts a function to Tester.
type TesterFunc func(ctx context.Context, in TestInput) (*domain.TestReport, error)

// Test calls f.
func (f TesterFunc) Test(ctx context.Context, in TestInput) (*domain.TestReport, error) {
	return f(ctx, in)
}

// PostmortemWriterFunc adapts a function to PostmortemWriter.
type PostmortemWriterFunc func(ctx context.Context, in PostmortemInput) (*domain.PostmortemReport, error)

// WritePostmortem calls f.
func (f PostmortemWriterFunc) WritePostmortem(ctx context.Context, in PostmortemInput) (*domain.PostmortemReport, error) {
	return f(ctx, in)
}

// GeneratorCoder uses the staged generator as the code worker.
func GeneratorCoder(g *generate.Generator) Coder {
	return CoderFunc(func(ctx context.Context, in CodeInput) (*domain.GeneratedCodeBundle, error) {
		return g.Generate(ctx, in.Design, in.CodingStandards)
	})
}

// Workers groups the injected stage workers and analyzer rosters.
type Workers struct {
	Planner    Planner
	Designer   Designer
	Coder      Coder
	Tester     Tester
	Postmortem PostmortemWriter

	DesignAnalyzers review.Roster
	CodeAnalyzers   review.Roster
}

// missing returns the names of unset workers.
func (w Workers) missing() []string {
	var names []string
	if w.Planner == nil {
		names = append(names, "planner")
	}
	if w.Designer == nil {
		names = append(names, "designer")
	}
	if w.Coder == nil {
		names = append(names, "coder")
	}
	if w.Tester == nil {
		names = append(names, "tester")
	}
	if w.Postmortem == nil {
		names = append(names, "postmortem")
	}
	if len(w.DesignAnalyzers) == 0 {
		names = append(names, "design analyzers")
	}
	if len(w.CodeAnalyzers) == 0 {
		names = append(names, "code analyzers")
	}
	return names
}
