package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// WorkerError reports a failure of a stage-producing worker.
type WorkerError struct {
	Stage string
	Err   error
}

// NewWorkerError wraps err as a failure of the named stage.
func NewWorkerError(stage string, err error) *WorkerError {
	return &WorkerError{Stage: stage, Err: err}
}

// Error implements the error interface.
func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s worker failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying worker error.
func (e *WorkerError) Unwrap() error {
	return e.Err
}

// Is reports ErrWorkerFailed in addition to the wrapped chain.
func (e *WorkerError) Is(target error) bool {
	return target == ErrWorkerFailed
}

// QualityGateError reports an unrecoverable gate failure.
type QualityGateError struct {
	Gate          string
	CriticalCount int
	HighCount     int
	Iterations    int
}

// Error implements the error interface.
func (e *QualityGateError) Error() string {
	return fmt.Sprintf("%s: %s gate failed after %d iteration(s) (critical=%d, high=%d)",
		ErrQualityGateFailed.Error(), e.Gate, e.Iterations, e.CriticalCount, e.HighCount)
}

// Unwrap returns ErrQualityGateFailed.
func (e *QualityGateError) Unwrap() error {
	return ErrQualityGateFailed
}

// MaxIterationsError reports a correction loop that fell through without a decision.
type MaxIterationsError struct {
	Stage string
	Limit int
}

// Error implements the error interface.
func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("%s: %s loop exceeded %d iteration(s) without a gate decision",
		ErrMaxIterationsExceeded.Error(), e.Stage, e.Limit)
}

// Unwrap returns ErrMaxIterationsExceeded.
func (e *MaxIterationsError) Unwrap() error {
	return ErrMaxIterationsExceeded
}

// GenerationError reports a failed code-generation attempt.
// Preview holds a bounded, redacted excerpt of the offending output.
type GenerationError struct {
	Phase    string
	FilePath string
	Attempts int
	Preview  string
	Err      error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var sb strings.Builder
	sb.WriteString("generation failed")
	if e.Phase != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Phase)
	}
	if e.FilePath != "" {
		fmt.Fprintf(&sb, " for %s", e.FilePath)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&sb, " after %d attempt(s)", e.Attempts)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if e.Preview != "" {
		fmt.Fprintf(&sb, " (preview: %q)", e.Preview)
	}
	return sb.String()
}

// Unwrap returns the last underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StructuralValidationError reports an inconsistent generated bundle.
// Missing lists structure entries with no generated file; Duplicates maps
// a repeated file path to the number of times it was generated.
type StructuralValidationError struct {
	Missing    []string
	Duplicates map[string]int
}

// Error implements the error interface.
func (e *StructuralValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "declared but not generated: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicates) > 0 {
		paths := make([]string, 0, len(e.Duplicates))
		for p := range e.Duplicates {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		dups := make([]string, len(paths))
		for i, p := range paths {
			dups[i] = fmt.Sprintf("%s (x%d)", p, e.Duplicates[p])
		}
		parts = append(parts, "duplicate file paths: "+strings.Join(dups, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrStructuralValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap returns ErrStructuralValidation.
func (e *StructuralValidationError) Unwrap() error {
	return ErrStructuralValidation
}

// AsQualityGateError extracts a QualityGateError from err's chain.
func AsQualityGateError(err error) (*QualityGateError, bool) {
	var qe *QualityGateError
	ok := errors.As(err, &qe)
	return qe, ok
}

// AsGenerationError extracts a GenerationError from err's chain.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	ok := errors.As(err, &ge)
	return ge, ok
}
