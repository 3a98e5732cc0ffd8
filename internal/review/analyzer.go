// Package review implements the review aggregation engine: it fans an artifact
// out to a roster of independent specialist analyzers, isolates per-analyzer
// failure, merges and deduplicates their findings, normalizes categories, and
// renders a gate verdict.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/clock, std lib
//   - MUST NOT import: internal/pipeline, internal/generate, internal/cli
package review

import (
	"context"

	"github.com/mrz1836/forge/internal/domain"
)

// Analyzer is a specialist reviewer focused on one quality dimension.
// Each analyzer receives its own copy of the artifact; changes it makes are
// invisible to the rest of the roster and to the caller.
type Analyzer interface {
	Analyze(ctx context.Context, artifact domain.StageArtifact) (domain.AnalyzerResult, error)
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, artifact domain.StageArtifact) (domain.AnalyzerResult, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, artifact domain.StageArtifact) (domain.AnalyzerResult, error) {
	return f(ctx, artifact)
}

// Member is a named roster slot.
type Member struct {
	Name     string
	Analyzer Analyzer
}

// Roster is the fixed, ordered set of analyzers a review dispatches to.
// Order is the merge order: when two analyzers report the same fingerprint,
// the one earlier in the roster wins regardless of which finished first.
type Roster []Member

// Names returns the analyzer names in roster order.
func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, m := range r {
		names[i] = m.Name
	}
	return names
}

// Standard analyzer names for the design and code rosters.
const (
	AnalyzerSecurity        = "security"
	AnalyzerPerformance     = "performance"
	AnalyzerDataIntegrity   = "data-integrity"
	AnalyzerMaintainability = "maintainability"
	AnalyzerArchitecture    = "architecture"
	AnalyzerAPIDesign       = "api-design"
)

// StandardAnalyzerNames returns the six specialist names in dispatch order.
func StandardAnalyzerNames() []string {
	return []string{
		AnalyzerSecurity,
		AnalyzerPerformance,
		AnalyzerDataIntegrity,
		AnalyzerMaintainability,
		AnalyzerArchitecture,
		AnalyzerAPIDesign,
	}
}

// NewRoster builds a roster from a name → analyzer map, ordered by names.
// Names with no analyzer in the map are skipped.
func NewRoster(names []string, analyzers map[string]Analyzer) Roster {
	roster := make(Roster, 0, len(names))
	for _, name := range names {
		if a, ok := analyzers[name]; ok && a != nil {
			roster = append(roster, Member{Name: name, Analyzer: a})
		}
	}
	return roster
}
