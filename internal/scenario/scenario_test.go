package scenario_test

import (
	"context"
	"path/filepath"
	"strings"
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
	"github.com/mrz1836/forge/internal/scenario"
	"github.com/mrz1836/forge/internal/testutil"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func runScenario(t *testing.T, s *scenario.Scenario) (*domain.PipelineExecutionResult, error) {
	t.Helper()
	workers, err := s.Build(generate.Config{}, zerolog.Nop(), testutil.FixedClock{T: testNow})
	require.NoError(t, err)

	orch, err := pipeline.NewOrchestrator(workers, pipeline.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	return orch.Execute(context.Background(), s.Request(), s.Approver())
}

func TestLoad_StagedScenarioRunsEndToEnd(t *testing.T) {
	s, err := scenario.Load(filepath.Join("testdata", "staged.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "todo-api", s.Name)
	assert.Equal(t, constants.GenerationModeStaged, s.GenerationMode())

	result, err := runScenario(t, s)
	require.NoError(t, err)

	assert.Equal(t, "todo-run-1", result.TaskID)
	assert.Equal(t, 2, result.DesignIterations, "critical design finding forces one correction")
	assert.Equal(t, constants.VerdictPass, result.DesignVerdict)
	assert.Equal(t, constants.VerdictConditionalPass, result.CodeVerdict)
	assert.Equal(t, constants.VerdictPass, result.TestVerdict)
	assert.Equal(t, constants.VerdictConditionalPass, result.OverallStatus)

	require.NotNil(t, result.Design)
	assert.Contains(t, result.Design.Overview, "revised")

	require.NotNil(t, result.Code)
	require.Len(t, result.Code.Files, 2)
	for _, f := range result.Code.Files {
		assert.NotContains(t, f.Content, "```")
	}
	assert.ElementsMatch(t, []string{"main.go"}, result.Code.FileStructure["."])

	require.NotNil(t, result.CodeReview)
	require.Len(t, result.CodeReview.Issues, 1)
	assert.Equal(t, domain.CategoryMaintainability, result.CodeReview.Issues[0].Category)

	require.NotNil(t, result.Plan)
	assert.Equal(t, "Build a REST API for todo items", result.Plan.Summary)
	assert.Equal(t, testNow, result.Plan.CreatedAt)

	require.NotNil(t, result.Postmortem)
	assert.Contains(t, result.Postmortem.Summary, "tests 4/4 passed")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := scenario.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad yaml",
			yaml: "requirements: [",
			want: "invalid scenario",
		},
		{
			name: "no requirements",
			yaml: "designs: [{overview: x}]\ncode: {bundles: [{project_id: p}]}",
			want: "requirements is required",
		},
		{
			name: "no designs",
			yaml: "requirements: r\ncode: {bundles: [{project_id: p}]}",
			want: "at least one design",
		},
		{
			name: "no code source",
			yaml: "requirements: r\ndesigns: [{overview: x}]",
			want: "exactly one of",
		},
		{
			name: "two code sources",
			yaml: "requirements: r\ndesigns: [{overview: x}]\ncode: {bundles: [{project_id: p}], bundle_text: [x]}",
			want: "exactly one of",
		},
		{
			name: "files without manifest",
			yaml: "requirements: r\ndesigns: [{overview: x}]\ncode: {bundle_text: [x], files: {a.go: [x]}}",
			want: "code.files requires code.manifest",
		},
		{
			name: "unknown mode",
			yaml: "requirements: r\ndesigns: [{overview: x}]\ncode: {mode: turbo, bundle_text: [x]}",
			want: `unknown code.mode "turbo"`,
		},
		{
			name: "empty analyzer script",
			yaml: "requirements: r\ndesigns: [{overview: x}]\ncode: {bundles: [{project_id: p}]}\nanalyzers: {design: {security: []}}",
			want: "analyzers.design.security has no results",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tc.yaml))
			require.ErrorIs(t, err, forgeerrors.ErrScenarioInvalid)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

const directBundles = `
requirements: Build a CLI
designs:
  - overview: cli
code:
  bundles:
    - project_id: cli
      files:
        - file_path: cmd/cli/main.go
          content: "package main\n"
        - file_path: go.mod
          content: "module cli\n"
tests:
  - total_tests: 2
    passed_tests: 1
    failures:
      - name: TestRun
        message: exit status 1
  - total_tests: 2
    passed_tests: 2
`

func TestBuild_DirectBundlesAndTestRetry(t *testing.T) {
	s, err := scenario.Parse([]byte(directBundles))
	require.NoError(t, err)
	assert.Empty(t, s.GenerationMode())

	result, err := runScenario(t, s)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TestRetries)
	assert.Equal(t, constants.VerdictPass, result.TestVerdict)
	assert.Equal(t, constants.VerdictPass, result.OverallStatus)

	require.NotNil(t, result.Code)
	assert.Equal(t, 2, result.Code.TotalFiles)
	assert.Equal(t, []string{"go.mod"}, result.Code.FileStructure["."])
	assert.Equal(t, []string{"main.go"}, result.Code.FileStructure["cmd/cli"])
}

const legacyScenario = "requirements: Build a CLI\n" +
	"designs:\n  - overview: cli\n" +
	"code:\n  bundle_text:\n    - |\n      ```json\n      {\"project_id\": \"cli\", \"files\": [{\"file_path\": \"main.go\", \"content\": \"package main\\n\"}]}\n      ```\n"

func TestBuild_LegacyBundleText(t *testing.T) {
	s, err := scenario.Parse([]byte(legacyScenario))
	require.NoError(t, err)
	assert.Equal(t, constants.GenerationModeLegacy, s.GenerationMode())

	result, err := runScenario(t, s)
	require.NoError(t, err)

	require.NotNil(t, result.Code)
	require.Len(t, result.Code.Files, 1)
	assert.Equal(t, "main.go", result.Code.Files[0].FilePath)
	assert.Equal(t, constants.VerdictPass, result.OverallStatus)
}

const failingDesign = `
requirements: Build a CLI
designs:
  - overview: cli
code:
  bundles:
    - project_id: cli
      files:
        - file_path: main.go
          content: "package main\n"
analyzers:
  design:
    architecture:
      - issues_found:
          - title: No layering
            description: Everything lives in main
            affected_component: cli
            severity: Critical
`

func TestBuild_ApprovalsOverrideGate(t *testing.T) {
	s, err := scenario.Parse([]byte(failingDesign + "approvals:\n  design: true\n"))
	require.NoError(t, err)

	result, err := runScenario(t, s)
	require.NoError(t, err)

	assert.Equal(t, 1, result.DesignIterations)
	assert.Equal(t, constants.VerdictFail, result.DesignVerdict)
	assert.Equal(t, constants.VerdictFail, result.OverallStatus)
	require.Len(t, result.Overrides, 1)
	assert.Equal(t, pipeline.GateDesign, result.Overrides[0].GateName)
	assert.Equal(t, 1, result.Overrides[0].CriticalCount)
}

func TestBuild_GateFailsWithoutApproval(t *testing.T) {
	s, err := scenario.Parse([]byte(failingDesign))
	require.NoError(t, err)

	result, err := runScenario(t, s)
	require.ErrorIs(t, err, forgeerrors.ErrQualityGateFailed)
	assert.Equal(t, constants.DesignMaxIterations, result.DesignIterations, "last script entry repeats")
	assert.Equal(t, constants.VerdictFail, result.OverallStatus)
}

func TestBuild_StrictScenarioExhausts(t *testing.T) {
	s, err := scenario.Parse([]byte("strict: true\n" + failingDesign))
	require.NoError(t, err)

	result, err := runScenario(t, s)
	require.ErrorIs(t, err, forgeerrors.ErrScenarioExhausted)
	require.ErrorIs(t, err, forgeerrors.ErrWorkerFailed)
	assert.Equal(t, 2, result.DesignIterations)
}

func TestBuild_ScriptedAnalyzerError(t *testing.T) {
	yaml := strings.Replace(failingDesign, "      - issues_found:", "      - error: model unavailable\n      - issues_found:", 1)
	s, err := scenario.Parse([]byte(yaml))
	require.NoError(t, err)

	workers, err := s.Build(generate.Config{}, zerolog.Nop(), nil)
	require.NoError(t, err)
	require.Len(t, workers.DesignAnalyzers, len(review.StandardAnalyzerNames()))

	engine := review.NewEngine(review.DefaultEngineConfig(), zerolog.Nop())
	design := &domain.DesignSpec{Overview: "cli"}

	report, err := engine.Review(context.Background(), "t1", design, workers.DesignAnalyzers)
	require.NoError(t, err)
	require.Len(t, report.AnalyzerFailures, 1)
	assert.Equal(t, review.AnalyzerArchitecture, report.AnalyzerFailures[0].Analyzer)
	assert.Equal(t, constants.VerdictPass, report.Verdict)

	report, err = engine.Review(context.Background(), "t1", design, workers.DesignAnalyzers)
	require.NoError(t, err)
	assert.Equal(t, constants.VerdictFail, report.Verdict)
}

func TestApprover_DefaultsToDecline(t *testing.T) {
	s := &scenario.Scenario{Approvals: map[string]bool{pipeline.GateCode: true}}
	approve := s.Approver()

	assert.True(t, approve(pipeline.GateCode, nil))
	assert.False(t, approve(pipeline.GateDesign, nil))
}

func TestResolveGenerationMode(t *testing.T) {
	t.Parallel()

	manifest := &domain.FileManifest{ProjectID: "cli"}
	tests := []struct {
		name       string
		code       scenario.CodeScript
		configured constants.GenerationMode
		want       constants.GenerationMode
	}{
		{"direct bundles", scenario.CodeScript{}, constants.GenerationModeLegacy, ""},
		{"manifest only", scenario.CodeScript{Manifest: manifest}, constants.GenerationModeLegacy, constants.GenerationModeStaged},
		{"bundle text only", scenario.CodeScript{BundleText: []string{"{}"}}, constants.GenerationModeStaged, constants.GenerationModeLegacy},
		{"both uses configured", scenario.CodeScript{Manifest: manifest, BundleText: []string{"{}"}}, constants.GenerationModeLegacy, constants.GenerationModeLegacy},
		{"both defaults to staged", scenario.CodeScript{Manifest: manifest, BundleText: []string{"{}"}}, "", constants.GenerationModeStaged},
		{"explicit mode wins", scenario.CodeScript{Mode: constants.GenerationModeStaged, Manifest: manifest, BundleText: []string{"{}"}}, constants.GenerationModeLegacy, constants.GenerationModeStaged},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := &scenario.Scenario{Code: tc.code}
			assert.Equal(t, tc.want, s.ResolveGenerationMode(tc.configured))
		})
	}
}
