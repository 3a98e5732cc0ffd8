package domain

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// PhaseLogEntry records one stage transition. The phase log is append-only.
type PhaseLogEntry struct {
	Phase     constants.Stage       `json:"phase"`
	Status    constants.PhaseStatus `json:"status"`
	Attempt   int                   `json:"attempt,omitempty"`
	Detail    string                `json:"detail,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// HITLOverrideRecord audits a human approval past a failed gate.
// Records are append-only: never deleted, never mutated.
type HITLOverrideRecord struct {
	GateName      string                 `json:"gate_name"`
	Decision      constants.HITLDecision `json:"decision"`
	ReviewID      string                 `json:"review_id"`
	CriticalCount int                    `json:"critical_count"`
	HighCount     int                    `json:"high_count"`
	Timestamp     time.Time              `json:"timestamp"`
}

// PipelineExecutionResult aggregates everything one run produced.
//
// Example JSON representation:
//
//	{
//	    "task_id": "6f0e7a1c-...",
//	    "overall_status": "CONDITIONAL_PASS",
//	    "design_verdict": "NEEDS_IMPROVEMENT",
//	    "code_verdict": "PASS",
//	    "test_verdict": "PASS",
//	    "phase_log": [...],
//	    "hitl_overrides": [],
//	    "duration_ms": 8123
//	}
type PipelineExecutionResult struct {
	TaskID        string            `json:"task_id"`
	Requirements  string            `json:"requirements"`
	OverallStatus constants.Verdict `json:"overall_status"`

	Plan       *ProjectPlan         `json:"plan,omitempty"`
	Design     *DesignSpec          `json:"design,omitempty"`
	Code       *GeneratedCodeBundle `json:"code,omitempty"`
	Test       *TestReport          `json:"test,omitempty"`
	Postmortem *PostmortemReport    `json:"postmortem,omitempty"`

	DesignReview *ReviewReport `json:"design_review,omitempty"`
	CodeReview   *ReviewReport `json:"code_review,omitempty"`

	DesignVerdict constants.Verdict `json:"design_verdict"`
	CodeVerdict   constants.Verdict `json:"code_verdict"`
	TestVerdict   constants.Verdict `json:"test_verdict"`

	DesignIterations int `json:"design_iterations"`
	CodeIterations   int `json:"code_iterations"`
	TestRetries      int `json:"test_retries"`

	PhaseLog  []PhaseLogEntry      `json:"phase_log"`
	Overrides []HITLOverrideRecord `json:"hitl_overrides"`

	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	DurationMs    int64     `json:"duration_ms"`
	SchemaVersion string    `json:"schema_version"`
}
