package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrz1836/forge/internal/errors"
)

// Output format names accepted by NewOutput.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	Success(msg string)
	Error(err error)
	Warning(msg string)
	Info(msg string)
	JSON(v any) error
}

// TTYOutput provides styled output for terminal displays.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a new TTYOutput.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{w: w, styles: NewOutputStyles()}
}

// Success prints a success message.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints an error message followed by a suggested action when one is known.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
	if _, action := errors.Actionable(err); action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  → "+action))
	}
}

// Warning prints a warning message.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints an informational message.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// JSON outputs a value as indented JSON.
func (o *TTYOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput writes machine-readable output. Messages become typed JSON objects.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// Success outputs {"type":"success","message":...}.
func (o *JSONOutput) Success(msg string) {
	_ = encodeJSON(o.w, jsonMessage{Type: "success", Message: msg})
}

// Error outputs {"type":"error","message":...,"action":...}.
func (o *JSONOutput) Error(err error) {
	_, action := errors.Actionable(err)
	_ = encodeJSON(o.w, jsonMessage{Type: "error", Message: err.Error(), Action: action})
}

// Warning outputs {"type":"warning","message":...}.
func (o *JSONOutput) Warning(msg string) {
	_ = encodeJSON(o.w, jsonMessage{Type: "warning", Message: msg})
}

// Info is a no-op for JSON output.
func (o *JSONOutput) Info(_ string) {}

// JSON outputs a value as indented JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// NewOutput creates the output for format; anything but "json" is styled text.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
