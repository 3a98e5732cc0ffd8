package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
// The wrapped error preserves the original error chain, so callers can
// still check for sentinels:
//
//	if errors.Is(err, errors.ErrStructuralValidation) {
//	    // producer contract violation, do not retry
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
//
//	return errors.Wrapf(err, "failed to persist result %s", taskID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}
