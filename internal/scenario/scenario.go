// Package scenario loads YAML files that script every collaborator of a
// pipeline run: plan, designs, code (direct bundles, staged manifest and
// file contents, or legacy bundle text), test reports, postmortem, and
// per-analyzer review results. A scenario lets the whole engine run from the
// CLI without a model backend.
//
// Each scripted list is consumed one entry per call. When a list runs out,
// the last entry repeats, unless the scenario is strict, in which case the
// call fails with ErrScenarioExhausted.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Scenario is the parsed form of a scenario file.
//
// Example:
//
//	name: todo-api
//	requirements: Build a REST API for todo items
//	plan:
//	  project_id: todo
//	  summary: CRUD service
//	designs:
//	  - overview: first draft
//	  - overview: revised draft
//	code:
//	  manifest:
//	    files:
//	      - file_path: main.go
//	        estimated_lines: 40
//	  files:
//	    main.go:
//	      - "package main\n\nfunc main() {}\n"
//	tests:
//	  - total_tests: 3
//	    passed_tests: 3
//	analyzers:
//	  design:
//	    security:
//	      - issues_found:
//	          - title: Missing auth
//	            severity: Critical
type Scenario struct {
	Name              string `yaml:"name"`
	TaskID            string `yaml:"task_id"`
	Requirements      string `yaml:"requirements"`
	DesignConstraints string `yaml:"design_constraints"`
	CodingStandards   string `yaml:"coding_standards"`

	// Strict makes exhausted lists an error instead of repeating the last entry.
	Strict bool `yaml:"strict"`

	Plan       *domain.ProjectPlan      `yaml:"plan"`
	Designs    []domain.DesignSpec      `yaml:"designs"`
	Code       CodeScript               `yaml:"code"`
	Tests      []domain.TestReport      `yaml:"tests"`
	Postmortem *domain.PostmortemReport `yaml:"postmortem"`
	Analyzers  AnalyzerScripts          `yaml:"analyzers"`

	// Approvals scripts HITL decisions by gate name when the CLI runs
	// non-interactively. Missing gates are declined.
	Approvals map[string]bool `yaml:"approvals"`
}

// CodeScript describes how the code stage produces bundles. Exactly one of
// Bundles, Manifest, or BundleText is set.
type CodeScript struct {
	// Mode overrides the configured generation mode for Manifest/BundleText scripts.
	Mode constants.GenerationMode `yaml:"mode"`

	// Bundles are returned directly by the code worker, one per call.
	Bundles []domain.GeneratedCodeBundle `yaml:"bundles"`

	// Manifest drives staged generation; Files maps a path to its content per attempt.
	Manifest *domain.FileManifest `yaml:"manifest"`
	Files    map[string][]string  `yaml:"files"`

	// BundleText is the raw legacy producer output, one per call.
	BundleText []string `yaml:"bundle_text"`
}

// AnalyzerScripts maps review kind to analyzer name to per-review results.
type AnalyzerScripts struct {
	Design map[string][]ReviewScript `yaml:"design"`
	Code   map[string][]ReviewScript `yaml:"code"`
}

// ReviewScript is one analyzer's result for one review. A non-empty Error
// makes the analyzer fail for that review.
type ReviewScript struct {
	domain.AnalyzerResult `yaml:",inline"`

	Error string `yaml:"error"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is an explicit CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse parses and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", forgeerrors.ErrScenarioInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the scenario can drive a full run.
func (s *Scenario) Validate() error {
	var problems []string

	if strings.TrimSpace(s.Requirements) == "" {
		problems = append(problems, "requirements is required")
	}
	if len(s.Designs) == 0 {
		problems = append(problems, "at least one design is required")
	}

	sources := 0
	if len(s.Code.Bundles) > 0 {
		sources++
	}
	if s.Code.Manifest != nil {
		sources++
	}
	if len(s.Code.BundleText) > 0 {
		sources++
	}
	if sources != 1 {
		problems = append(problems, "code must set exactly one of bundles, manifest, bundle_text")
	}
	if s.Code.Manifest == nil && len(s.Code.Files) > 0 {
		problems = append(problems, "code.files requires code.manifest")
	}
	switch s.Code.Mode {
	case "", constants.GenerationModeStaged, constants.GenerationModeLegacy:
	default:
		problems = append(problems, fmt.Sprintf("unknown code.mode %q", s.Code.Mode))
	}

	for kind, scripts := range map[string]map[string][]ReviewScript{"design": s.Analyzers.Design, "code": s.Analyzers.Code} {
		for name, list := range scripts {
			if len(list) == 0 {
				problems = append(problems, fmt.Sprintf("analyzers.%s.%s has no results", kind, name))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", forgeerrors.ErrScenarioInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// GenerationMode returns the generation mode the code script needs, or ""
// when the code worker returns bundles directly.
func (s *Scenario) GenerationMode() constants.GenerationMode {
	return s.ResolveGenerationMode("")
}

// ResolveGenerationMode picks the mode for the code script. An explicit
// code.mode wins; a script carrying both a manifest and bundle_text falls back
// to configured; otherwise the mode follows whichever script is present.
func (s *Scenario) ResolveGenerationMode(configured constants.GenerationMode) constants.GenerationMode {
	hasManifest := s.Code.Manifest != nil
	hasBundleText := len(s.Code.BundleText) > 0
	switch {
	case !hasManifest && !hasBundleText:
		return ""
	case s.Code.Mode != "":
		return s.Code.Mode
	case hasManifest && hasBundleText && configured != "":
		return configured
	case hasManifest:
		return constants.GenerationModeStaged
	default:
		return constants.GenerationModeLegacy
	}
}
