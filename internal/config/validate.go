package config

import (
	"strings"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
)

// Bounds enforced by Validate.
const (
	maxGateIterations = 20
	maxConcurrency    = 64
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first failure found, wrapping the
// section's sentinel.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validatePipelineConfig(&cfg.Pipeline); err != nil {
		return err
	}
	if err := validateReviewConfig(&cfg.Review); err != nil {
		return err
	}
	if err := validateGenerationConfig(&cfg.Generation); err != nil {
		return err
	}
	return validateLoggingConfig(&cfg.Logging)
}

func validatePipelineConfig(cfg *PipelineConfig) error {
	if cfg.DesignMaxIterations < 1 || cfg.DesignMaxIterations > maxGateIterations {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.design_max_iterations must be between 1 and %d, got %d", maxGateIterations, cfg.DesignMaxIterations)
	}
	if cfg.CodeMaxIterations < 1 || cfg.CodeMaxIterations > maxGateIterations {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.code_max_iterations must be between 1 and %d, got %d", maxGateIterations, cfg.CodeMaxIterations)
	}
	if cfg.TestMaxRetries < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.test_max_retries cannot be negative, got %d", cfg.TestMaxRetries)
	}
	if cfg.MaxTotalIterations < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.max_total_iterations cannot be negative, got %d", cfg.MaxTotalIterations)
	}
	if cfg.MaxTotalIterations > 0 && cfg.MaxTotalIterations < 2 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.max_total_iterations must allow one design and one code iteration, got %d", cfg.MaxTotalIterations)
	}
	return nil
}

func validateReviewConfig(cfg *ReviewConfig) error {
	if cfg.CodeHighThreshold < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidReview,
			"review.code_high_threshold must be at least 1, got %d", cfg.CodeHighThreshold)
	}
	if cfg.AnalyzerTimeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidReview,
			"review.analyzer_timeout cannot be negative, got %s", cfg.AnalyzerTimeout)
	}
	if err := validateAnalyzerNames("review.design_analyzers", cfg.DesignAnalyzers); err != nil {
		return err
	}
	return validateAnalyzerNames("review.code_analyzers", cfg.CodeAnalyzers)
}

func validateAnalyzerNames(key string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.Wrapf(errors.ErrConfigInvalidReview, "%s contains an empty name", key)
		}
		if seen[name] {
			return errors.Wrapf(errors.ErrConfigInvalidReview, "%s lists %q twice", key, name)
		}
		seen[name] = true
	}
	return nil
}

func validateGenerationConfig(cfg *GenerationConfig) error {
	switch constants.GenerationMode(cfg.Mode) {
	case constants.GenerationModeStaged, constants.GenerationModeLegacy:
	default:
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.mode must be %q or %q, got %q",
			constants.GenerationModeStaged, constants.GenerationModeLegacy, cfg.Mode)
	}

	positive := []struct {
		key   string
		value int
	}{
		{"generation.file_max_attempts", cfg.FileMaxAttempts},
		{"generation.min_content_length", cfg.MinContentLength},
		{"generation.tokens_per_line", cfg.TokensPerLine},
		{"generation.min_tokens", cfg.MinTokens},
		{"generation.preview_length", cfg.PreviewLength},
	}
	for _, p := range positive {
		if p.value < 1 {
			return errors.Wrapf(errors.ErrConfigInvalidGeneration, "%s must be at least 1, got %d", p.key, p.value)
		}
	}

	if cfg.MaxTokens < cfg.MinTokens {
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.max_tokens (%d) must not be below generation.min_tokens (%d)", cfg.MaxTokens, cfg.MinTokens)
	}
	if cfg.Concurrency < 1 || cfg.Concurrency > maxConcurrency {
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.concurrency must be between 1 and %d, got %d", maxConcurrency, cfg.Concurrency)
	}
	if cfg.RequestsPerSecond < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.requests_per_second cannot be negative, got %g", cfg.RequestsPerSecond)
	}
	if cfg.RetryBackoff < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.retry_backoff cannot be negative, got %s", cfg.RetryBackoff)
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.Wrapf(errors.ErrConfigInvalidLogging,
			"logging.level must be one of debug, info, warn, error, got %q", cfg.Level)
	}
}
