package review

import (
	"github.com/mrz1836/forge/internal/domain"
)

// MergeIssues concatenates issue lists in the order given and drops every
// issue whose fingerprint was already seen. The first occurrence wins.
//
// Categories and severities are normalized on the way through. The input
// findings are copied, never modified. MergeIssues(MergeIssues(x)) == MergeIssues(x).
func MergeIssues(lists ...[]domain.Finding) []domain.Finding {
	seen := make(map[domain.Fingerprint]struct{})
	merged := make([]domain.Finding, 0)
	for _, list := range lists {
		for _, f := range list {
			fp := f.Fingerprint()
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			merged = append(merged, normalizeIssue(f))
		}
	}
	return merged
}

// MergeSuggestions concatenates suggestion lists without deduplication.
func MergeSuggestions(lists ...[]domain.Finding) []domain.Finding {
	merged := make([]domain.Finding, 0)
	for _, list := range lists {
		for _, f := range list {
			f.Category = NormalizeCategory(string(f.Category))
			merged = append(merged, f)
		}
	}
	return merged
}

// Tally counts issues by severity.
func Tally(issues []domain.Finding) domain.SeverityCounts {
	var c domain.SeverityCounts
	for _, f := range issues {
		switch normalizeSeverity(f.Severity) {
		case domain.SeverityCritical:
			c.Critical++
		case domain.SeverityHigh:
			c.High++
		case domain.SeverityLow:
			c.Low++
		default:
			c.Medium++
		}
	}
	return c
}

func normalizeIssue(f domain.Finding) domain.Finding {
	f.Category = NormalizeCategory(string(f.Category))
	f.Severity = normalizeSeverity(f.Severity)
	return f
}
