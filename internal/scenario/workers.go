package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/generate"
	"github.com/mrz1836/forge/internal/pipeline"
	"github.com/mrz1836/forge/internal/review"
)

// sequence hands out scripted entries one call at a time.
type sequence[T any] struct {
	name   string
	items  []T
	strict bool
	calls  atomic.Int64
}

func newSequence[T any](name string, items []T, strict bool) *sequence[T] {
	return &sequence[T]{name: name, items: items, strict: strict}
}

func (q *sequence[T]) next() (T, error) {
	var zero T
	n := int(q.calls.Add(1)) - 1
	if n >= len(q.items) {
		if q.strict || len(q.items) == 0 {
			return zero, fmt.Errorf("%w: %s has %d entries", forgeerrors.ErrScenarioExhausted, q.name, len(q.items))
		}
		n = len(q.items) - 1
	}
	return q.items[n], nil
}

// Build turns the scenario into pipeline workers. genCfg configures the
// generator used for manifest and bundle_text scripts; its Mode applies only
// when the script leaves the choice open (see ResolveGenerationMode).
func (s *Scenario) Build(genCfg generate.Config, logger zerolog.Logger, c clock.Clock) (pipeline.Workers, error) {
	if c == nil {
		c = clock.RealClock{}
	}

	coder, err := s.coder(genCfg, logger, c)
	if err != nil {
		return pipeline.Workers{}, err
	}

	return pipeline.Workers{
		Planner:         s.planner(c),
		Designer:        s.designer(c),
		Coder:           coder,
		Tester:          s.tester(c),
		Postmortem:      s.postmortem(c),
		DesignAnalyzers: s.roster("design", s.Analyzers.Design),
		CodeAnalyzers:   s.roster("code", s.Analyzers.Code),
	}, nil
}

// Request returns the pipeline request the scenario describes.
func (s *Scenario) Request() pipeline.Request {
	return pipeline.Request{
		TaskID:            s.TaskID,
		Requirements:      s.Requirements,
		DesignConstraints: s.DesignConstraints,
		CodingStandards:   s.CodingStandards,
	}
}

// Approver answers HITL prompts from the scenario's approvals.
func (s *Scenario) Approver() pipeline.Approver {
	return func(gateName string, _ *domain.ReviewReport) bool {
		return s.Approvals[gateName]
	}
}

func stamp(meta *domain.ArtifactMeta, c clock.Clock) {
	if meta.Version == "" {
		meta.Version = constants.ArtifactSchemaVersion
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = c.Now().UTC()
	}
}

func (s *Scenario) planner(c clock.Clock) pipeline.Planner {
	return pipeline.PlannerFunc(func(_ context.Context, in pipeline.PlanInput) (*domain.ProjectPlan, error) {
		var plan domain.ProjectPlan
		if s.Plan != nil {
			plan = *s.Plan
		}
		if plan.Summary == "" {
			plan.Summary = firstLine(in.Requirements)
		}
		stamp(&plan.ArtifactMeta, c)
		return &plan, nil
	})
}

func (s *Scenario) designer(c clock.Clock) pipeline.Designer {
	designs := newSequence("designs", s.Designs, s.Strict)
	return pipeline.DesignerFunc(func(_ context.Context, in pipeline.DesignInput) (*domain.DesignSpec, error) {
		design, err := designs.next()
		if err != nil {
			return nil, err
		}
		if design.ProjectID == "" && in.Plan != nil {
			design.ProjectID = in.Plan.ProjectID
		}
		stamp(&design.ArtifactMeta, c)
		return &design, nil
	})
}

func (s *Scenario) coder(genCfg generate.Config, logger zerolog.Logger, c clock.Clock) (pipeline.Coder, error) {
	mode := s.ResolveGenerationMode(genCfg.Mode)
	if mode == "" {
		bundles := newSequence("code.bundles", s.Code.Bundles, s.Strict)
		return pipeline.CoderFunc(func(_ context.Context, _ pipeline.CodeInput) (*domain.GeneratedCodeBundle, error) {
			bundle, err := bundles.next()
			if err != nil {
				return nil, err
			}
			if len(bundle.FileStructure) == 0 {
				paths := make([]string, 0, len(bundle.Files))
				for _, f := range bundle.Files {
					paths = append(paths, f.FilePath)
				}
				bundle.FileStructure = generate.BuildFileStructure(paths)
			}
			if bundle.TotalFiles == 0 {
				bundle.TotalFiles = len(bundle.Files)
			}
			stamp(&bundle.ArtifactMeta, c)
			return &bundle, nil
		}), nil
	}

	producers, err := s.producers()
	if err != nil {
		return nil, err
	}
	genCfg.Mode = mode
	gen := generate.NewGenerator(genCfg, producers, logger, generate.WithClock(c))
	return pipeline.GeneratorCoder(gen), nil
}

// producers scripts the generator collaborators. The manifest is handed to
// the generator as JSON text so the real parser runs.
func (s *Scenario) producers() (generate.Producers, error) {
	var p generate.Producers

	if s.Code.Manifest != nil {
		raw, err := json.Marshal(s.Code.Manifest)
		if err != nil {
			return p, fmt.Errorf("%w: manifest: %w", forgeerrors.ErrScenarioInvalid, err)
		}
		manifestText := string(raw)
		p.Manifest = generate.ManifestProducerFunc(func(context.Context, *domain.DesignSpec, string) (string, error) {
			return manifestText, nil
		})

		var mu sync.Mutex
		files := make(map[string]*sequence[string], len(s.Code.Files))
		for path, contents := range s.Code.Files {
			files[path] = newSequence("code.files."+path, contents, s.Strict)
		}
		p.File = generate.FileProducerFunc(func(_ context.Context, req generate.FileRequest) (string, error) {
			mu.Lock()
			seq, ok := files[req.File.FilePath]
			mu.Unlock()
			if !ok {
				// Unscripted files come back empty and exercise the retry path.
				return "", nil
			}
			return seq.next()
		})
	}

	if len(s.Code.BundleText) > 0 {
		texts := newSequence("code.bundle_text", s.Code.BundleText, s.Strict)
		p.Bundle = generate.BundleProducerFunc(func(context.Context, *domain.DesignSpec, string) (string, error) {
			return texts.next()
		})
	}

	return p, nil
}

func (s *Scenario) tester(c clock.Clock) pipeline.Tester {
	reports := newSequence("tests", s.Tests, s.Strict)
	return pipeline.TesterFunc(func(_ context.Context, in pipeline.TestInput) (*domain.TestReport, error) {
		if len(s.Tests) == 0 {
			total := 0
			if in.Code != nil {
				total = len(in.Code.Files)
			}
			report := &domain.TestReport{TotalTests: total, PassedTests: total}
			stamp(&report.ArtifactMeta, c)
			return report, nil
		}
		report, err := reports.next()
		if err != nil {
			return nil, err
		}
		if report.FailedTests == 0 && len(report.Failures) > 0 {
			report.FailedTests = len(report.Failures)
		}
		stamp(&report.ArtifactMeta, c)
		return &report, nil
	})
}

func (s *Scenario) postmortem(c clock.Clock) pipeline.PostmortemWriter {
	return pipeline.PostmortemWriterFunc(func(_ context.Context, in pipeline.PostmortemInput) (*domain.PostmortemReport, error) {
		var report domain.PostmortemReport
		if s.Postmortem != nil {
			report = *s.Postmortem
		}
		if report.Summary == "" {
			report.Summary = summarize(in)
		}
		if report.DefectCount == 0 {
			report.DefectCount = countDefects(in)
		}
		stamp(&report.ArtifactMeta, c)
		return &report, nil
	})
}

// roster builds all six specialists. Unscripted specialists report nothing.
func (s *Scenario) roster(kind string, scripts map[string][]ReviewScript) review.Roster {
	analyzers := make(map[string]review.Analyzer, len(review.StandardAnalyzerNames()))
	for _, name := range review.StandardAnalyzerNames() {
		list, ok := scripts[name]
		if !ok {
			analyzers[name] = review.AnalyzerFunc(func(context.Context, domain.StageArtifact) (domain.AnalyzerResult, error) {
				return domain.AnalyzerResult{}, nil
			})
			continue
		}
		results := newSequence(fmt.Sprintf("analyzers.%s.%s", kind, name), list, s.Strict)
		analyzers[name] = review.AnalyzerFunc(func(context.Context, domain.StageArtifact) (domain.AnalyzerResult, error) {
			script, err := results.next()
			if err != nil {
				return domain.AnalyzerResult{}, err
			}
			if script.Error != "" {
				return domain.AnalyzerResult{}, fmt.Errorf("scripted failure: %s", script.Error) //nolint:err113 // message comes from the scenario file
			}
			return script.AnalyzerResult, nil
		})
	}
	return review.NewRoster(review.StandardAnalyzerNames(), analyzers)
}

func summarize(in pipeline.PostmortemInput) string {
	var parts []string
	if in.DesignReview != nil {
		parts = append(parts, "design "+in.DesignReview.Verdict.String())
	}
	if in.CodeReview != nil {
		parts = append(parts, "code "+in.CodeReview.Verdict.String())
	}
	if in.Test != nil {
		parts = append(parts, fmt.Sprintf("tests %d/%d passed", in.Test.PassedTests, in.Test.TotalTests))
	}
	if len(in.Overrides) > 0 {
		parts = append(parts, fmt.Sprintf("%d gate override(s)", len(in.Overrides)))
	}
	if len(parts) == 0 {
		return "run " + in.TaskID
	}
	return strings.Join(parts, ", ")
}

func countDefects(in pipeline.PostmortemInput) int {
	n := 0
	if in.DesignReview != nil {
		n += in.DesignReview.CriticalIssueCount + in.DesignReview.HighIssueCount
	}
	if in.CodeReview != nil {
		n += in.CodeReview.CriticalIssueCount + in.CodeReview.HighIssueCount
	}
	if in.Test != nil {
		n += in.Test.FailedTests
	}
	return n
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
