package testutil

import (
	"testing"
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// FixedClock is a clock.Clock that always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time { return c.T }

// IsolateHome points FORGE_HOME and the working directory at fresh temp
// dirs so user configuration and saved results cannot leak into a test.
// It returns the FORGE_HOME path. Tests using it cannot run in parallel.
func IsolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(constants.EnvForgeHome, home)
	t.Chdir(t.TempDir())
	return home
}
