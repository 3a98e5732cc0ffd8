package domain

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// StageArtifact is the sum type of everything a stage worker can produce.
// The orchestrator switches on the concrete type (or Stage) instead of
// probing fields; everything it does not gate on is passed through unchanged.
type StageArtifact interface {
	// Stage reports which pipeline stage produced the artifact.
	Stage() constants.Stage

	// SchemaVersion reports the artifact schema version.
	SchemaVersion() string

	// Clone returns a deep copy, so a consumer can read the artifact while
	// the original keeps changing hands.
	Clone() StageArtifact
}

// Compile-time interface checks.
var (
	_ StageArtifact = (*ProjectPlan)(nil)
	_ StageArtifact = (*DesignSpec)(nil)
	_ StageArtifact = (*GeneratedCodeBundle)(nil)
	_ StageArtifact = (*TestReport)(nil)
	_ StageArtifact = (*PostmortemReport)(nil)
)

// ArtifactMeta is embedded in every artifact.
type ArtifactMeta struct {
	Version   string    `json:"schema_version" yaml:"schema_version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Extra carries producer fields the core does not interpret.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra"`
}

// SchemaVersion returns the artifact schema version, defaulting to the current one.
func (m ArtifactMeta) SchemaVersion() string {
	if m.Version == "" {
		return constants.ArtifactSchemaVersion
	}
	return m.Version
}

// PlannedTask is one unit of work in a project plan.
type PlannedTask struct {
	ID            string  `json:"id" yaml:"id"`
	Title         string  `json:"title" yaml:"title"`
	Description   string  `json:"description,omitempty" yaml:"description"`
	EstimateHours float64 `json:"estimate_hours,omitempty" yaml:"estimate_hours"`
}

// ProjectPlan is produced by the plan stage.
type ProjectPlan struct {
	ArtifactMeta `yaml:",inline"`

	ProjectID string        `json:"project_id" yaml:"project_id"`
	Summary   string        `json:"summary" yaml:"summary"`
	Tasks     []PlannedTask `json:"tasks" yaml:"tasks"`
}

// Stage implements StageArtifact.
func (*ProjectPlan) Stage() constants.Stage { return constants.StagePlan }

// DesignComponent is a named building block in a design spec.
type DesignComponent struct {
	Name           string   `json:"name" yaml:"name"`
	Responsibility string   `json:"responsibility,omitempty" yaml:"responsibility"`
	Interfaces     []string `json:"interfaces,omitempty" yaml:"interfaces"`
}

// APIEndpoint is one endpoint declared by a design spec.
type APIEndpoint struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// DesignSpec is produced by the design stage and reviewed by the design gate.
type DesignSpec struct {
	ArtifactMeta `yaml:",inline"`

	ProjectID    string            `json:"project_id" yaml:"project_id"`
	Overview     string            `json:"overview" yaml:"overview"`
	Components   []DesignComponent `json:"components" yaml:"components"`
	DataModels   []string          `json:"data_models,omitempty" yaml:"data_models"`
	APIEndpoints []APIEndpoint     `json:"api_endpoints,omitempty" yaml:"api_endpoints"`
}

// Stage implements StageArtifact.
func (*DesignSpec) Stage() constants.Stage { return constants.StageDesign }

// ComponentNames returns the names of all design components.
func (d *DesignSpec) ComponentNames() []string {
	names := make([]string, 0, len(d.Components))
	for _, c := range d.Components {
		names = append(names, c.Name)
	}
	return names
}

// TestFailure describes one failing test.
type TestFailure struct {
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message,omitempty" yaml:"message"`
}

// TestReport is produced by the test stage. A failing report is data, not an error.
type TestReport struct {
	ArtifactMeta `yaml:",inline"`

	TotalTests  int           `json:"total_tests" yaml:"total_tests"`
	PassedTests int           `json:"passed_tests" yaml:"passed_tests"`
	FailedTests int           `json:"failed_tests" yaml:"failed_tests"`
	Failures    []TestFailure `json:"failures,omitempty" yaml:"failures"`
	Coverage    float64       `json:"coverage,omitempty" yaml:"coverage"`
}

// Stage implements StageArtifact.
func (*TestReport) Stage() constants.Stage { return constants.StageTest }

// Passed reports whether every test passed.
func (r *TestReport) Passed() bool {
	return r.FailedTests == 0 && len(r.Failures) == 0
}

// Verdict maps the report to PASS or FAIL.
func (r *TestReport) Verdict() constants.Verdict {
	if r.Passed() {
		return constants.VerdictPass
	}
	return constants.VerdictFail
}

// PostmortemReport is produced by the final stage.
type PostmortemReport struct {
	ArtifactMeta `yaml:",inline"`

	Summary     string   `json:"summary" yaml:"summary"`
	DefectCount int      `json:"defect_count" yaml:"defect_count"`
	Lessons     []string `json:"lessons,omitempty" yaml:"lessons"`
}

// Stage implements StageArtifact.
func (*PostmortemReport) Stage() constants.Stage { return constants.StagePostmortem }

// IsNilArtifact reports whether a is nil or a typed nil pointer.
func IsNilArtifact(a StageArtifact) bool {
	switch v := a.(type) {
	case nil:
		return true
	case *ProjectPlan:
		return v == nil
	case *DesignSpec:
		return v == nil
	case *GeneratedCodeBundle:
		return v == nil
	case *TestReport:
		return v == nil
	case *PostmortemReport:
		return v == nil
	default:
		return false
	}
}
