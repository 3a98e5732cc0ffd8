package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/logging"
)

var (
	// jsonFencePattern extracts the first fenced JSON block.
	jsonFencePattern = regexp.MustCompile("(?s)```(?:json|JSON)[ \\t]*\\r?\\n(.*?)```") //nolint:gochecknoglobals // compiled once

	// codeFencePattern strips a markdown code fence around file content.
	codeFencePattern = regexp.MustCompile("(?s)^\\s*```[\\w.+-]*[ \\t]*\\r?\\n(.*?)\\r?\\n?```\\s*$") //nolint:gochecknoglobals // compiled once
)

// StripFences removes a markdown code fence wrapping the whole of s.
// Text that is not fenced is returned unchanged.
func StripFences(s string) string {
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// decodeJSON parses text into v: first the fenced ```json block if one exists,
// then the whole text. It returns a GenerationError with a bounded, redacted
// preview when neither parses.
func decodeJSON(text, phase string, previewLen int, v any) error {
	var candidates []string
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, strings.TrimSpace(text))

	var lastErr error
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	cause := forgeerrors.ErrGenerationParse
	if lastErr != nil {
		cause = fmt.Errorf("%w: %w", forgeerrors.ErrGenerationParse, lastErr)
	}
	return &forgeerrors.GenerationError{
		Phase:    phase,
		Attempts: 1,
		Preview:  logging.Preview(text, previewLen),
		Err:      cause,
	}
}

// ParseManifest parses producer text into a FileManifest. Missing totals are
// recomputed from the file list.
func ParseManifest(text string, previewLen int) (*domain.FileManifest, error) {
	var m domain.FileManifest
	if err := decodeJSON(text, PhaseManifest, previewLen, &m); err != nil {
		return nil, err
	}
	if len(m.Files) == 0 {
		return nil, &forgeerrors.GenerationError{
			Phase:    PhaseManifest,
			Attempts: 1,
			Preview:  logging.Preview(text, previewLen),
			Err:      fmt.Errorf("%w: %w", forgeerrors.ErrGenerationParse, forgeerrors.ErrEmptyManifest),
		}
	}
	if m.TotalFiles == 0 {
		m.TotalFiles = len(m.Files)
	}
	if m.TotalEstimatedLines == 0 {
		for _, f := range m.Files {
			m.TotalEstimatedLines += f.EstimatedLines
		}
	}
	return &m, nil
}

// ParseBundle parses producer text into a GeneratedCodeBundle. Missing
// totals and file structure are recomputed from the files.
func ParseBundle(text string, previewLen int) (*domain.GeneratedCodeBundle, error) {
	var b domain.GeneratedCodeBundle
	if err := decodeJSON(text, PhaseBundle, previewLen, &b); err != nil {
		return nil, err
	}
	if b.TotalFiles == 0 {
		b.TotalFiles = len(b.Files)
	}
	if b.TotalLinesOfCode == 0 {
		b.TotalLinesOfCode = countLines(b.Files)
	}
	if len(b.FileStructure) == 0 {
		b.FileStructure = BuildFileStructure(b.FilePaths())
	}
	if len(b.ImplementedSemanticUnits) == 0 {
		b.ImplementedSemanticUnits = collectIDs(b.Files, func(f domain.GeneratedFile) string { return f.SemanticUnitID })
	}
	if len(b.ImplementedComponents) == 0 {
		b.ImplementedComponents = collectIDs(b.Files, func(f domain.GeneratedFile) string { return f.ComponentID })
	}
	return &b, nil
}
