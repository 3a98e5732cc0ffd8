package review

import (
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

// Policy turns severity tallies into a gate verdict.
type Policy interface {
	Verdict(counts domain.SeverityCounts) constants.Verdict
}

// DesignPolicy fails on any Critical issue and asks for improvement on any other issue.
type DesignPolicy struct{}

// Verdict implements Policy.
func (DesignPolicy) Verdict(counts domain.SeverityCounts) constants.Verdict {
	return DesignVerdict(counts)
}

// CodePolicy fails on any Critical issue or when High issues reach HighThreshold.
type CodePolicy struct {
	HighThreshold int
}

// Verdict implements Policy.
func (p CodePolicy) Verdict(counts domain.SeverityCounts) constants.Verdict {
	return CodeVerdict(counts, p.HighThreshold)
}

// DesignVerdict computes the design gate verdict.
func DesignVerdict(counts domain.SeverityCounts) constants.Verdict {
	switch {
	case counts.Critical > 0:
		return constants.VerdictFail
	case counts.Total() > 0:
		return constants.VerdictNeedsImprovement
	default:
		return constants.VerdictPass
	}
}

// CodeVerdict computes the code gate verdict. A threshold below one uses
// the default.
func CodeVerdict(counts domain.SeverityCounts, highThreshold int) constants.Verdict {
	if highThreshold < 1 {
		highThreshold = constants.CodeHighIssueThreshold
	}
	switch {
	case counts.Critical > 0, counts.High >= highThreshold:
		return constants.VerdictFail
	case counts.Total() > 0:
		return constants.VerdictConditionalPass
	default:
		return constants.VerdictPass
	}
}
