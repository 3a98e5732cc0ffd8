package pipeline

import "github.com/mrz1836/forge/internal/constants"

// DeriveOverallStatus combines the three stage verdicts into the run status.
// Rules are applied in order:
//
//	PASS             design, code, and test all PASS
//	CONDITIONAL_PASS design PASS or NEEDS_IMPROVEMENT, code PASS or CONDITIONAL_PASS, test PASS
//	FAIL             any of design, code, test is FAIL
//	NEEDS_REVIEW     anything else (for example a stage that never produced a verdict)
func DeriveOverallStatus(design, code, test constants.Verdict) constants.Verdict {
	switch {
	case design == constants.VerdictPass && code == constants.VerdictPass && test == constants.VerdictPass:
		return constants.VerdictPass
	case (design == constants.VerdictPass || design == constants.VerdictNeedsImprovement) &&
		(code == constants.VerdictPass || code == constants.VerdictConditionalPass) &&
		test == constants.VerdictPass:
		return constants.VerdictConditionalPass
	case design == constants.VerdictFail || code == constants.VerdictFail || test == constants.VerdictFail:
		return constants.VerdictFail
	default:
		return constants.VerdictNeedsReview
	}
}
