package review_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/review"
)

func TestMergeIssues_Idempotent(t *testing.T) {
	lists := [][]domain.Finding{
		{issue("a", domain.SeverityHigh, "security"), issue("b", domain.SeverityLow, "code_smell")},
		{issue("a", domain.SeverityCritical, "performance"), issue("c", "unknown", "")},
		{issue("b", domain.SeverityLow, "code_smell")},
	}

	once := review.MergeIssues(lists...)
	twice := review.MergeIssues(once)

	assert.Equal(t, once, twice)
	require.Len(t, once, 3)
	assert.Equal(t, domain.SeverityHigh, once[0].Severity, "first occurrence wins")
	assert.Equal(t, domain.CategoryMaintainability, once[1].Category)
	assert.Equal(t, domain.SeverityMedium, once[2].Severity)
	assert.Equal(t, domain.CategoryArchitecture, once[2].Category)
}

func TestMergeIssues_FingerprintIsCaseSensitive(t *testing.T) {
	a := issue("Title", domain.SeverityLow, "api")
	b := issue("title", domain.SeverityLow, "api")

	merged := review.MergeIssues([]domain.Finding{a}, []domain.Finding{b})

	assert.Len(t, merged, 2)
}

func TestMergeIssues_DoesNotMutateInput(t *testing.T) {
	in := []domain.Finding{issue("a", "HIGH", "authentication")}

	_ = review.MergeIssues(in)

	assert.Equal(t, domain.Category("authentication"), in[0].Category)
	assert.Equal(t, domain.Severity("HIGH"), in[0].Severity)
}

func TestMergeIssues_Empty(t *testing.T) {
	merged := review.MergeIssues()

	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestTally(t *testing.T) {
	issues := []domain.Finding{
		issue("a", domain.SeverityCritical, ""),
		issue("b", "critical", ""),
		issue("c", domain.SeverityHigh, ""),
		issue("d", domain.SeverityMedium, ""),
		issue("e", domain.SeverityLow, ""),
		issue("f", "", ""),
	}

	c := review.Tally(issues)

	assert.Equal(t, domain.SeverityCounts{Critical: 2, High: 1, Medium: 2, Low: 1}, c)
	assert.Equal(t, len(issues), c.Total())
}

func TestDesignVerdict(t *testing.T) {
	tests := []struct {
		counts domain.SeverityCounts
		want   constants.Verdict
	}{
		{domain.SeverityCounts{}, constants.VerdictPass},
		{domain.SeverityCounts{Low: 1}, constants.VerdictNeedsImprovement},
		{domain.SeverityCounts{High: 9}, constants.VerdictNeedsImprovement},
		{domain.SeverityCounts{Critical: 1}, constants.VerdictFail},
		{domain.SeverityCounts{Critical: 1, Low: 4}, constants.VerdictFail},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, review.DesignVerdict(tc.counts), "%+v", tc.counts)
	}
}

func TestCodeVerdict_DefaultThresholdWhenUnset(t *testing.T) {
	assert.Equal(t, constants.VerdictFail, review.CodeVerdict(domain.SeverityCounts{High: 5}, 0))
	assert.Equal(t, constants.VerdictConditionalPass, review.CodeVerdict(domain.SeverityCounts{High: 4}, 0))
	assert.Equal(t, constants.VerdictFail, review.CodeVerdict(domain.SeverityCounts{High: 2}, 2))
}

// rank orders verdicts from least to most blocking.
func rank(v constants.Verdict) int {
	switch v {
	case constants.VerdictPass:
		return 0
	case constants.VerdictNeedsImprovement, constants.VerdictConditionalPass:
		return 1
	case constants.VerdictFail:
		return 2
	default:
		return -1
	}
}

// Adding an issue of any severity never makes a verdict less blocking.
func TestVerdicts_MonotoneInSeverityCounts(t *testing.T) {
	bump := []func(domain.SeverityCounts) domain.SeverityCounts{
		func(c domain.SeverityCounts) domain.SeverityCounts { c.Critical++; return c },
		func(c domain.SeverityCounts) domain.SeverityCounts { c.High++; return c },
		func(c domain.SeverityCounts) domain.SeverityCounts { c.Medium++; return c },
		func(c domain.SeverityCounts) domain.SeverityCounts { c.Low++; return c },
	}

	for crit := 0; crit <= 2; crit++ {
		for high := 0; high <= 6; high++ {
			for med := 0; med <= 2; med++ {
				for low := 0; low <= 2; low++ {
					base := domain.SeverityCounts{Critical: crit, High: high, Medium: med, Low: low}
					for _, b := range bump {
						next := b(base)
						assert.LessOrEqual(t, rank(review.DesignVerdict(base)), rank(review.DesignVerdict(next)))
						assert.LessOrEqual(t, rank(review.CodeVerdict(base, 5)), rank(review.CodeVerdict(next, 5)))
					}
				}
			}
		}
	}
}
