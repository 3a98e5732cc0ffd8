// Package constants provides centralized constant values used throughout FORGE.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by FORGE for organizing data.
const (
	// ForgeHome is the hidden directory name where FORGE stores all its data.
	// This directory is created in the user's home directory.
	ForgeHome = ".forge"

	// ResultsDir is the directory name where pipeline results are persisted.
	ResultsDir = "results"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Correction-loop budgets for the gated stages.
const (
	// DesignMaxIterations is how many times the design stage may be generated
	// before a failing gate becomes fatal.
	DesignMaxIterations = 3

	// CodeMaxIterations is how many times the code stage may be generated
	// before a failing gate becomes fatal.
	CodeMaxIterations = 3

	// TestMaxRetries is how many times a failing test stage triggers code
	// regeneration and a re-run before the failing report is accepted.
	TestMaxRetries = 2

	// MaxTotalIterations is the pipeline-wide generation budget.
	// Zero disables the cross-stage cap.
	MaxTotalIterations = 0
)

// Review thresholds.
const (
	// CodeHighIssueThreshold is the number of High issues at which a code
	// review fails even without Critical issues.
	CodeHighIssueThreshold = 5
)

// Staged generation defaults.
const (
	// FileMaxAttempts is the per-file retry budget in staged generation.
	FileMaxAttempts = 3

	// MinFileContentLength is the shortest file content accepted as a success.
	MinFileContentLength = 20

	// TokensPerEstimatedLine scales the per-file token budget.
	TokensPerEstimatedLine = 12

	// MinFileTokens is the floor for the per-file token budget.
	MinFileTokens = 512

	// MaxFileTokens is the ceiling for the per-file token budget.
	MaxFileTokens = 16000

	// GenerationConcurrency is how many files are generated at once.
	GenerationConcurrency = 4

	// GenerationRetryBackoff is the base delay between per-file attempts.
	GenerationRetryBackoff = 1 * time.Second

	// ParsePreviewLength bounds the producer text embedded in parse errors.
	ParsePreviewLength = 500

	// RootDirectory is the file-structure key for files with no directory.
	RootDirectory = "."
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file rotates.
	LogMaxSizeMB = 10

	// LogMaxBackups is how many rotated log files are kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated log files are kept.
	LogMaxAgeDays = 28

	// LogCompress controls gzip compression of rotated log files.
	LogCompress = true
)

// Schema version constants for data migration support.
const (
	// ArtifactSchemaVersion is the current version of the stage artifact schema.
	ArtifactSchemaVersion = "1.0"

	// ResultSchemaVersion is the current version of the persisted result JSON.
	ResultSchemaVersion = "1.0"
)
