package generate

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// Config holds generation settings.
type Config struct {
	Mode constants.GenerationMode

	// FileMaxAttempts is the per-file attempt budget in staged mode.
	FileMaxAttempts int

	// MinContentLength is the shortest trimmed content accepted for a file.
	MinContentLength int

	// TokensPerLine scales a file's token budget from its estimated lines.
	// The budget is clamped to [MinTokens, MaxTokens].
	TokensPerLine int
	MinTokens     int
	MaxTokens     int

	// Concurrency bounds how many files are generated at once.
	Concurrency int

	// RequestsPerSecond paces producer calls. Zero means unlimited.
	RequestsPerSecond float64

	// RetryBackoff is the base delay between attempts; attempt n waits n-1 times this.
	RetryBackoff time.Duration

	// PreviewLength bounds the producer output embedded in errors.
	PreviewLength int
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		Mode:             constants.GenerationModeStaged,
		FileMaxAttempts:  constants.FileMaxAttempts,
		MinContentLength: constants.MinFileContentLength,
		TokensPerLine:    constants.TokensPerEstimatedLine,
		MinTokens:        constants.MinFileTokens,
		MaxTokens:        constants.MaxFileTokens,
		Concurrency:      constants.GenerationConcurrency,
		RetryBackoff:     constants.GenerationRetryBackoff,
		PreviewLength:    constants.ParsePreviewLength,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.FileMaxAttempts < 1 {
		c.FileMaxAttempts = d.FileMaxAttempts
	}
	if c.MinContentLength < 1 {
		c.MinContentLength = d.MinContentLength
	}
	if c.TokensPerLine < 1 {
		c.TokensPerLine = d.TokensPerLine
	}
	if c.MinTokens < 1 {
		c.MinTokens = d.MinTokens
	}
	if c.MaxTokens < c.MinTokens {
		c.MaxTokens = max(d.MaxTokens, c.MinTokens)
	}
	if c.Concurrency < 1 {
		c.Concurrency = d.Concurrency
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
	if c.PreviewLength < 1 {
		c.PreviewLength = d.PreviewLength
	}
	return c
}

// TokenBudget returns the output budget for a file with the given estimated
// line count: estimatedLines*TokensPerLine clamped to [MinTokens, MaxTokens].
func (c Config) TokenBudget(estimatedLines int) int {
	c = c.withDefaults()
	budget := estimatedLines * c.TokensPerLine
	return min(max(budget, c.MinTokens), c.MaxTokens)
}
