// Package clock provides an abstraction for time operations to improve testability.
// Instead of calling time.Now() directly, the pipeline and review engine use the
// Clock interface, which tests replace to control timestamps and IDs.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// Sequence hands out strictly increasing nanosecond stamps derived from a Clock.
// Two calls in the same nanosecond (or a clock that stands still) still
// yield distinct values, which makes the stamps safe to embed in IDs.
type Sequence struct {
	clock Clock

	mu   sync.Mutex
	last int64
}

// NewSequence creates a Sequence over c. A nil clock uses RealClock.
func NewSequence(c Clock) *Sequence {
	if c == nil {
		c = RealClock{}
	}
	return &Sequence{clock: c}
}

// Next returns a stamp greater than every previously returned stamp.
func (s *Sequence) Next() int64 {
	now := s.clock.Now().UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}
