package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
// Order matters: more specific sentinels come first.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Pipeline gates
	// ===================
	{
		err: ErrQualityGateFailed,
		info: ErrorInfo{
			Message: "A quality gate failed and no correction iterations remain.",
			Action:  "Review the critical/high findings, or re-run with --approve-gates to override.",
		},
	},
	{
		err: ErrMaxIterationsExceeded,
		info: ErrorInfo{
			Message: "A correction loop ended without a gate decision. This is a bug.",
			Action:  "Please report this with the saved pipeline result attached.",
		},
	},
	{
		err: ErrTotalIterationsExceeded,
		info: ErrorInfo{
			Message: "The pipeline-wide iteration budget was used up.",
			Action:  "Raise pipeline.max_total_iterations or set it to 0 to disable the cap.",
		},
	},

	// ===================
	// Generation
	// ===================
	{
		err: ErrStructuralValidation,
		info: ErrorInfo{
			Message: "The generated bundle is structurally inconsistent.",
			Action:  "Inspect the listed paths; the producer violated the bundle contract.",
		},
	},
	{
		err: ErrEmptyContent,
		info: ErrorInfo{
			Message: "A file could not be generated: the producer kept returning empty content.",
			Action:  "Check the producer for that file, or raise generation.file_max_attempts.",
		},
	},
	{
		err: ErrGenerationParse,
		info: ErrorInfo{
			Message: "The producer output could not be parsed.",
			Action:  "See the preview in the error; consider switching generation.mode to staged.",
		},
	},
	{
		err: ErrEmptyManifest,
		info: ErrorInfo{
			Message: "The manifest producer returned no files.",
			Action:  "Check the design spec passed to code generation.",
		},
	},

	// ===================
	// Workers
	// ===================
	{
		err: ErrWorkerFailed,
		info: ErrorInfo{
			Message: "A stage worker failed.",
			Action:  "Check the worker logs for the failing stage and retry.",
		},
	},
	{
		err: ErrWorkerNotConfigured,
		info: ErrorInfo{
			Message: "The pipeline is missing a stage worker.",
			Action:  "Provide all five workers when constructing the orchestrator.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "No configuration was loaded.",
			Action:  "Run 'forge config show' to inspect the effective configuration.",
		},
	},
	{
		err: ErrConfigInvalidPipeline,
		info: ErrorInfo{
			Message: "Pipeline configuration is invalid.",
			Action:  "Check the pipeline section of .forge/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidReview,
		info: ErrorInfo{
			Message: "Review configuration is invalid.",
			Action:  "Check the review section of .forge/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidGeneration,
		info: ErrorInfo{
			Message: "Generation configuration is invalid.",
			Action:  "Check the generation section of .forge/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidLogging,
		info: ErrorInfo{
			Message: "Logging configuration is invalid.",
			Action:  "Set logging.level to debug, info, warn, or error.",
		},
	},

	// ===================
	// Storage & CLI
	// ===================
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Another forge process is writing the same result.",
			Action:  "Wait for the other run to finish and try again.",
		},
	},
	{
		err: ErrResultNotFound,
		info: ErrorInfo{
			Message: "No saved result exists for that task.",
			Action:  "List saved results with 'forge results list'.",
		},
	},
	{
		err: ErrScenarioInvalid,
		info: ErrorInfo{
			Message: "The scenario file is invalid.",
			Action:  "Check that every stage has at least one scripted output.",
		},
	},
	{
		err: ErrScenarioExhausted,
		info: ErrorInfo{
			Message: "The scenario ran out of scripted outputs.",
			Action:  "Add more outputs for the stage named in the error.",
		},
	},
	{
		err: ErrInteractiveRequired,
		info: ErrorInfo{
			Message: "Interactive gate approval needs a terminal.",
			Action:  "Use --approve-gates or --no-approve in non-interactive environments.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
