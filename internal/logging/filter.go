// Package logging provides sensitive data filtering for FORGE logs and error evidence.
//
// Generated content, producer output previews, and analyzer error text may echo
// credentials that leaked into a prompt or a generated config file. Everything
// that lands in a log file or in a GenerationError preview passes through here.
package logging

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// truncatedSuffix marks a preview that was cut short.
const truncatedSuffix = "...(truncated)"

// sensitivePatterns matches common API key, token, and credential formats.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]+`),

	// OpenAI-style keys
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),

	// api_key: value / apikey=value
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),

	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),

	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),

	// JWT-shaped strings (three base64url segments)
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}`),

	regexp.MustCompile(`(?i)(token|auth)\s*[:=]\s*["']?[a-zA-Z0-9+/=]{32,}["']?`),
}

// sensitiveFieldNames are field names whose values are always redacted.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"api_key",
	"apikey",
	"auth_token",
	"password",
	"secret",
	"credential",
	"private_key",
	"access_token",
	"refresh_token",
	"bearer",
	"authorization",
}

// SensitiveDataHook flags log events whose message contains sensitive data.
// Zerolog hooks cannot rewrite a message; call sites filter with
// FilterSensitiveValue and the file writer is wrapped in a FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns [REDACTED] for sensitive field names and the filtered
// value otherwise.
//
// Usage:
//
//	log.Debug().Str("content", logging.SafeValue("content", content)).Msg("file generated")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// Preview returns at most limit runes of s with secrets redacted. Redaction
// runs on the full text first so a secret straddling the cut is still caught.
// A limit below one returns the whole filtered string.
func Preview(s string, limit int) string {
	filtered := FilterSensitiveValue(s)
	if limit < 1 || utf8.RuneCountInString(filtered) <= limit {
		return filtered
	}
	runes := []rune(filtered)
	return string(runes[:limit]) + truncatedSuffix
}

// FilteringWriter wraps an io.Writer and redacts sensitive data on the way through.
// The CLI wraps its log file in one so secrets never reach disk.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a FilteringWriter around w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers do not
// see a short write when redaction changes the length.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
