package domain

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// ReviewKind distinguishes design reviews from code reviews.
type ReviewKind string

// Review kinds.
const (
	ReviewKindDesign ReviewKind = "design"
	ReviewKindCode   ReviewKind = "code"
)

// SeverityCounts tallies issues by severity.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Total returns the number of issues counted.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// AnalyzerFailure records an analyzer whose contribution was dropped.
type AnalyzerFailure struct {
	Analyzer string `json:"analyzer"`
	Error    string `json:"error"`
}

// ReviewReport is the immutable outcome of one gate evaluation.
//
// Example JSON representation:
//
//	{
//	    "task_id": "9f1c...",
//	    "review_id": "design-review-1735293600000000000",
//	    "kind": "design",
//	    "issues": [...],
//	    "critical_issue_count": 1,
//	    "overall_assessment": "FAIL",
//	    "review_duration_ms": 42
//	}
type ReviewReport struct {
	TaskID   string     `json:"task_id"`
	ReviewID string     `json:"review_id"`
	Kind     ReviewKind `json:"kind"`

	// Issues are the merged, deduplicated, category-normalized issues.
	Issues []Finding `json:"issues"`

	// Suggestions are concatenated across analyzers without dedup.
	Suggestions []Finding `json:"suggestions"`

	CriticalIssueCount int `json:"critical_issue_count"`
	HighIssueCount     int `json:"high_issue_count"`
	MediumIssueCount   int `json:"medium_issue_count"`
	LowIssueCount      int `json:"low_issue_count"`

	// Verdict is the gate outcome. For design reviews this is the overall
	// assessment; for code reviews it is the review status.
	Verdict constants.Verdict `json:"overall_assessment"`

	// AnalyzerCount is the roster size the review dispatched to.
	AnalyzerCount int `json:"analyzer_count"`

	// AnalyzerFailures lists analyzers whose contribution was treated as empty.
	AnalyzerFailures []AnalyzerFailure `json:"analyzer_failures,omitempty"`

	// DurationMs is the wall-clock time of the dispatch-merge-verdict cycle.
	DurationMs int64 `json:"review_duration_ms"`

	CreatedAt time.Time `json:"created_at"`
}

// Counts returns the report's severity tallies.
func (r *ReviewReport) Counts() SeverityCounts {
	return SeverityCounts{
		Critical: r.CriticalIssueCount,
		High:     r.HighIssueCount,
		Medium:   r.MediumIssueCount,
		Low:      r.LowIssueCount,
	}
}

// ReviewStatus returns the verdict under its code-review name.
func (r *ReviewReport) ReviewStatus() constants.Verdict {
	return r.Verdict
}
