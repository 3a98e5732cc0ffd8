package constants

// Stage identifies one step of the generation pipeline.
// Values use snake_case for JSON serialization compatibility.
type Stage string

// Pipeline stages in execution order.
const (
	StagePlan       Stage = "plan"
	StageDesign     Stage = "design"
	StageCode       Stage = "code"
	StageTest       Stage = "test"
	StagePostmortem Stage = "postmortem"
)

// String returns the string representation of the Stage.
func (s Stage) String() string {
	return string(s)
}

// Stages returns all stages in execution order.
func Stages() []Stage {
	return []Stage{StagePlan, StageDesign, StageCode, StageTest, StagePostmortem}
}

// Verdict is the outcome of a gate evaluation or of a whole run.
// Values use SCREAMING_SNAKE_CASE to match the review report wire format.
type Verdict string

// Verdict constants.
//
//	Design gate: Pass | NeedsImprovement | Fail
//	Code gate:   Pass | ConditionalPass  | Fail
//	Test stage:  Pass | Fail
//	Run:         Pass | ConditionalPass  | Fail | NeedsReview
const (
	// VerdictPass means no issues were found.
	VerdictPass Verdict = "PASS"

	// VerdictNeedsImprovement means the design has non-blocking issues.
	VerdictNeedsImprovement Verdict = "NEEDS_IMPROVEMENT"

	// VerdictConditionalPass means the code has issues below the fail threshold.
	VerdictConditionalPass Verdict = "CONDITIONAL_PASS"

	// VerdictFail means the gate blocks progress.
	VerdictFail Verdict = "FAIL"

	// VerdictNeedsReview is the residual run status when no other rule applies.
	VerdictNeedsReview Verdict = "NEEDS_REVIEW"
)

// String returns the string representation of the Verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsBlocking reports whether the verdict stops a gate from advancing on its own.
func (v Verdict) IsBlocking() bool {
	return v == VerdictFail
}

// PhaseStatus is the status recorded on a phase log entry.
type PhaseStatus string

// Phase status constants.
const (
	PhaseStarted    PhaseStatus = "started"
	PhaseCompleted  PhaseStatus = "completed"
	PhaseReviewing  PhaseStatus = "reviewing"
	PhaseRetrying   PhaseStatus = "retrying"
	PhaseOverridden PhaseStatus = "overridden"
	PhaseFailed     PhaseStatus = "failed"
)

// String returns the string representation of the PhaseStatus.
func (s PhaseStatus) String() string {
	return string(s)
}

// GenerationMode selects how the code stage produces a bundle.
type GenerationMode string

// Generation modes.
const (
	// GenerationModeStaged requests a manifest, then each file separately.
	GenerationModeStaged GenerationMode = "staged"

	// GenerationModeLegacy requests the whole bundle in one call.
	GenerationModeLegacy GenerationMode = "legacy"
)

// String returns the string representation of the GenerationMode.
func (m GenerationMode) String() string {
	return string(m)
}

// HITLDecision is the decision recorded on an override record.
type HITLDecision string

// HITL decisions.
const (
	HITLApproved HITLDecision = "approved"
)
