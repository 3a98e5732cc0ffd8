package config

import (
	"github.com/mrz1836/forge/internal/constants"
)

// DefaultLogLevel is the log level used when none is configured.
const DefaultLogLevel = "info"

// DefaultConfig returns a new Config with the built-in defaults. These are the
// base layer that config files, environment variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DesignMaxIterations: constants.DesignMaxIterations,
			CodeMaxIterations:   constants.CodeMaxIterations,
			TestMaxRetries:      constants.TestMaxRetries,
			MaxTotalIterations:  constants.MaxTotalIterations,
		},
		Review: ReviewConfig{
			CodeHighThreshold: constants.CodeHighIssueThreshold,
		},
		Generation: GenerationConfig{
			Mode:             string(constants.GenerationModeStaged),
			FileMaxAttempts:  constants.FileMaxAttempts,
			MinContentLength: constants.MinFileContentLength,
			TokensPerLine:    constants.TokensPerEstimatedLine,
			MinTokens:        constants.MinFileTokens,
			MaxTokens:        constants.MaxFileTokens,
			Concurrency:      constants.GenerationConcurrency,
			RetryBackoff:     constants.GenerationRetryBackoff,
			PreviewLength:    constants.ParsePreviewLength,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}
