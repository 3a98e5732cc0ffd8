// Package config provides configuration management for FORGE with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (FORGE_* prefix, e.g. FORGE_PIPELINE_DESIGN_MAX_ITERATIONS)
//  3. Project config (.forge/config.yaml)
//  4. Global config (~/.forge/config.yaml, or $FORGE_HOME/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages. Mapping the
// sections onto engine options happens in internal/cli.
package config

import "time"

// Config is the root configuration structure for FORGE.
type Config struct {
	// Pipeline contains the correction-loop budgets.
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`

	// Review contains gate and analyzer settings.
	Review ReviewConfig `yaml:"review" mapstructure:"review"`

	// Generation contains staged code generation settings.
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`

	// Logging contains log output settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// PipelineConfig contains the orchestrator's iteration budgets.
type PipelineConfig struct {
	// DesignMaxIterations is how many design generations a failing gate allows.
	// Default: 3
	DesignMaxIterations int `yaml:"design_max_iterations" mapstructure:"design_max_iterations"`

	// CodeMaxIterations is how many code generations a failing gate allows.
	// Default: 3
	CodeMaxIterations int `yaml:"code_max_iterations" mapstructure:"code_max_iterations"`

	// TestMaxRetries is how many times failing tests trigger code regeneration.
	// Default: 2
	TestMaxRetries int `yaml:"test_max_retries" mapstructure:"test_max_retries"`

	// MaxTotalIterations caps all generations in one run. 0 disables the cap.
	// Default: 0
	MaxTotalIterations int `yaml:"max_total_iterations" mapstructure:"max_total_iterations"`
}

// ReviewConfig contains review engine settings.
type ReviewConfig struct {
	// CodeHighThreshold is the High issue count that fails a code review.
	// Default: 5
	CodeHighThreshold int `yaml:"code_high_threshold" mapstructure:"code_high_threshold"`

	// AnalyzerTimeout bounds each analyzer call. 0 means no per-analyzer timeout.
	AnalyzerTimeout time.Duration `yaml:"analyzer_timeout" mapstructure:"analyzer_timeout"`

	// DesignAnalyzers and CodeAnalyzers select and order the specialists for
	// each gate. Empty means all six.
	DesignAnalyzers []string `yaml:"design_analyzers" mapstructure:"design_analyzers"`
	CodeAnalyzers   []string `yaml:"code_analyzers" mapstructure:"code_analyzers"`
}

// GenerationConfig contains code generation settings.
type GenerationConfig struct {
	// Mode is "staged" (manifest, then per-file content) or "legacy" (one call).
	Mode string `yaml:"mode" mapstructure:"mode"`

	FileMaxAttempts  int `yaml:"file_max_attempts" mapstructure:"file_max_attempts"`
	MinContentLength int `yaml:"min_content_length" mapstructure:"min_content_length"`
	TokensPerLine    int `yaml:"tokens_per_line" mapstructure:"tokens_per_line"`
	MinTokens        int `yaml:"min_tokens" mapstructure:"min_tokens"`
	MaxTokens        int `yaml:"max_tokens" mapstructure:"max_tokens"`
	Concurrency      int `yaml:"concurrency" mapstructure:"concurrency"`

	// RequestsPerSecond paces producer calls. 0 means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// RetryBackoff is the base delay between per-file attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// PreviewLength bounds producer text embedded in parse errors.
	PreviewLength int `yaml:"preview_length" mapstructure:"preview_length"`
}

// LoggingConfig contains log settings. CLI --verbose and --quiet take precedence.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" mapstructure:"level"`
}
