package domain

import (
	"strings"

	"github.com/mrz1836/forge/internal/constants"
)

// FileMetadata describes one file a code-generation attempt intends to produce.
// FilePath is the unique key within a manifest.
type FileMetadata struct {
	FilePath       string   `json:"file_path" yaml:"file_path"`
	FileType       string   `json:"file_type" yaml:"file_type"`
	Description    string   `json:"description" yaml:"description"`
	EstimatedLines int      `json:"estimated_lines" yaml:"estimated_lines"`
	Dependencies   []string `json:"dependencies,omitempty" yaml:"dependencies"`
	SemanticUnitID string   `json:"semantic_unit_id,omitempty" yaml:"semantic_unit_id"`
	ComponentID    string   `json:"component_id,omitempty" yaml:"component_id"`
}

// FileManifest is the metadata-only plan for a bundle. It carries no file content.
type FileManifest struct {
	ProjectID            string         `json:"project_id" yaml:"project_id"`
	Files                []FileMetadata `json:"files" yaml:"files"`
	TotalFiles           int            `json:"total_files" yaml:"total_files"`
	TotalEstimatedLines  int            `json:"total_estimated_lines" yaml:"total_estimated_lines"`
	ExternalDependencies []string       `json:"external_dependencies,omitempty" yaml:"external_dependencies"`
	SetupInstructions    string         `json:"setup_instructions,omitempty" yaml:"setup_instructions"`
}

// GeneratedFile is one file of generated code. FilePath is unique within a bundle.
type GeneratedFile struct {
	FilePath       string `json:"file_path" yaml:"file_path"`
	Content        string `json:"content" yaml:"content"`
	FileType       string `json:"file_type" yaml:"file_type"`
	SemanticUnitID string `json:"semantic_unit_id,omitempty" yaml:"semantic_unit_id"`
	ComponentID    string `json:"component_id,omitempty" yaml:"component_id"`
}

// CountNonBlankLines returns the number of lines in content that contain
// something other than whitespace.
func CountNonBlankLines(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// GeneratedCodeBundle is produced by the code stage and reviewed by the code gate.
type GeneratedCodeBundle struct {
	ArtifactMeta `yaml:",inline"`

	ProjectID string          `json:"project_id" yaml:"project_id"`
	Files     []GeneratedFile `json:"files" yaml:"files"`

	// FileStructure maps a directory to the file names it contains.
	// Root-level files live under ".".
	FileStructure map[string][]string `json:"file_structure" yaml:"file_structure"`

	TotalFiles       int `json:"total_files" yaml:"total_files"`
	TotalLinesOfCode int `json:"total_lines_of_code" yaml:"total_lines_of_code"`

	ImplementedSemanticUnits []string `json:"implemented_semantic_units,omitempty" yaml:"implemented_semantic_units"`
	ImplementedComponents    []string `json:"implemented_components,omitempty" yaml:"implemented_components"`

	ExternalDependencies []string `json:"external_dependencies,omitempty" yaml:"external_dependencies"`
	SetupInstructions    string   `json:"setup_instructions,omitempty" yaml:"setup_instructions"`
}

// Stage implements StageArtifact.
func (*GeneratedCodeBundle) Stage() constants.Stage { return constants.StageCode }

// FilePaths returns the path of every generated file in bundle order.
func (b *GeneratedCodeBundle) FilePaths() []string {
	paths := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		paths = append(paths, f.FilePath)
	}
	return paths
}
