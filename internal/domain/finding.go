// Package domain provides shared domain types for the FORGE generation pipeline.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

// Category is the quality dimension a finding belongs to.
// Incoming categories are normalized to one of these values by the review engine.
type Category string

// Canonical finding categories.
const (
	CategorySecurity        Category = "Security"
	CategoryPerformance     Category = "Performance"
	CategoryArchitecture    Category = "Architecture"
	CategoryDataIntegrity   Category = "Data Integrity"
	CategoryMaintainability Category = "Maintainability"
	CategoryAPIDesign       Category = "API Design"
)

// Categories returns every canonical category.
func Categories() []Category {
	return []Category{
		CategorySecurity,
		CategoryPerformance,
		CategoryArchitecture,
		CategoryDataIntegrity,
		CategoryMaintainability,
		CategoryAPIDesign,
	}
}

// Severity grades an issue. Suggestions use Priority instead.
type Severity string

// Issue severities, most severe first.
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Priority grades an improvement suggestion.
type Priority string

// Suggestion priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Finding is a single issue or improvement suggestion reported by an analyzer.
// Findings are never mutated after creation; the review engine may discard
// one as a duplicate of an earlier finding with the same Fingerprint.
type Finding struct {
	// ID is the analyzer-assigned identifier.
	ID string `json:"id" yaml:"id"`

	// Category is the quality dimension, normalized on ingestion.
	Category Category `json:"category" yaml:"category"`

	// Severity grades issues. Empty for suggestions.
	Severity Severity `json:"severity,omitempty" yaml:"severity"`

	// Priority grades suggestions. Empty for issues.
	Priority Priority `json:"priority,omitempty" yaml:"priority"`

	Title             string `json:"title" yaml:"title"`
	Description       string `json:"description" yaml:"description"`
	AffectedComponent string `json:"affected_component" yaml:"affected_component"`
	Evidence          string `json:"evidence,omitempty" yaml:"evidence"`
	Impact            string `json:"impact,omitempty" yaml:"impact"`
}

// Fingerprint is the dedup key of a finding. Matching is exact and case-sensitive.
type Fingerprint struct {
	Title             string
	Description       string
	AffectedComponent string
}

// Fingerprint returns the dedup key for f.
func (f Finding) Fingerprint() Fingerprint {
	return Fingerprint{
		Title:             f.Title,
		Description:       f.Description,
		AffectedComponent: f.AffectedComponent,
	}
}

// AnalyzerResult is what a single specialist analyzer returns.
type AnalyzerResult struct {
	IssuesFound            []Finding `json:"issues_found" yaml:"issues_found"`
	ImprovementSuggestions []Finding `json:"improvement_suggestions" yaml:"improvement_suggestions"`
}
