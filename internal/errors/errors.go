// Package errors provides centralized error handling for FORGE.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application, plus typed errors that carry the evidence needed to
// diagnose a failed pipeline run without re-running it. All error types can be
// checked using errors.Is() and errors.As().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrWorkerFailed indicates that a stage-producing worker (plan, design,
	// code, test, postmortem) returned an error.
	ErrWorkerFailed = errors.New("stage worker failed")

	// ErrQualityGateFailed indicates a gate resolved to fail with no HITL
	// approval and no correction iterations left.
	ErrQualityGateFailed = errors.New("quality gate failed")

	// ErrMaxIterationsExceeded indicates a correction loop ended without
	// reaching a terminal gate decision. Observing it means a bug.
	ErrMaxIterationsExceeded = errors.New("max iterations exceeded")

	// ErrTotalIterationsExceeded indicates the pipeline-wide iteration budget
	// was consumed across all stages.
	ErrTotalIterationsExceeded = errors.New("total iteration budget exceeded")

	// ErrGenerationParse indicates producer output could not be parsed into
	// a manifest or bundle.
	ErrGenerationParse = errors.New("generation output could not be parsed")

	// ErrEmptyContent indicates a per-file producer returned empty or too-short content.
	ErrEmptyContent = errors.New("generated content empty or too short")

	// ErrStructuralValidation indicates a manifest, file structure, or
	// duplicate-path inconsistency in a generated bundle.
	ErrStructuralValidation = errors.New("structural validation failed")

	// ErrEmptyManifest indicates the manifest producer returned no files.
	ErrEmptyManifest = errors.New("manifest contains no files")

	// ErrAnalyzerFailed indicates a specialist analyzer failed. It is recorded
	// on the review report but never returned from a review.
	ErrAnalyzerFailed = errors.New("analyzer failed")

	// ErrEmptyRoster indicates a review was requested with no analyzers.
	ErrEmptyRoster = errors.New("review roster is empty")

	// ErrUnsupportedArtifact indicates an artifact from a stage that has no review gate.
	ErrUnsupportedArtifact = errors.New("artifact stage has no review gate")

	// ErrNilArtifact indicates a nil artifact was passed where one is required.
	ErrNilArtifact = errors.New("artifact is nil")

	// ErrWorkerNotConfigured indicates the orchestrator was built without a required worker.
	ErrWorkerNotConfigured = errors.New("worker not configured")

	// ErrRunAlreadyActive indicates a run with the same task ID is already registered.
	ErrRunAlreadyActive = errors.New("run already active")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidPipeline indicates invalid pipeline iteration settings.
	ErrConfigInvalidPipeline = errors.New("invalid pipeline configuration")

	// ErrConfigInvalidReview indicates invalid review settings.
	ErrConfigInvalidReview = errors.New("invalid review configuration")

	// ErrConfigInvalidGeneration indicates invalid generation settings.
	ErrConfigInvalidGeneration = errors.New("invalid generation configuration")

	// ErrConfigInvalidLogging indicates invalid logging settings.
	ErrConfigInvalidLogging = errors.New("invalid logging configuration")

	// ErrResultNotFound indicates that a stored pipeline result does not exist.
	ErrResultNotFound = errors.New("pipeline result not found")

	// ErrLockTimeout indicates that a result file lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock acquisition timed out")

	// ErrInvalidTaskID indicates a task ID that is unsafe to use as a path component.
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrScenarioInvalid indicates a scenario file is malformed or incomplete.
	ErrScenarioInvalid = errors.New("invalid scenario")

	// ErrScenarioExhausted indicates a scripted worker was called more times
	// than the scenario provides outputs for.
	ErrScenarioExhausted = errors.New("scenario outputs exhausted")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInteractiveRequired indicates that an interactive prompt was needed but no TTY is available.
	ErrInteractiveRequired = errors.New("interactive prompt required")

	// ErrPromptCanceled indicates the user aborted an interactive prompt.
	ErrPromptCanceled = errors.New("prompt canceled")
)
