package generate

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

// BuildFileStructure groups file paths by directory. Root-level files are
// listed under ".". Names within a directory are unique and sorted.
func BuildFileStructure(paths []string) map[string][]string {
	sets := make(map[string]map[string]struct{})
	for _, p := range paths {
		dir, name := splitPath(p)
		if sets[dir] == nil {
			sets[dir] = make(map[string]struct{})
		}
		sets[dir][name] = struct{}{}
	}

	structure := make(map[string][]string, len(sets))
	for dir, names := range sets {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}
		sort.Strings(list)
		structure[dir] = list
	}
	return structure
}

// StructurePaths flattens a file structure back into full paths, sorted.
func StructurePaths(structure map[string][]string) []string {
	var paths []string
	for dir, names := range structure {
		for _, n := range names {
			paths = append(paths, joinPath(dir, n))
		}
	}
	sort.Strings(paths)
	return paths
}

// Assemble builds a bundle from a manifest and the files generated for it.
// Files keep manifest order.
func Assemble(manifest *domain.FileManifest, files []domain.GeneratedFile, now time.Time) *domain.GeneratedCodeBundle {
	declared := make([]string, 0, len(manifest.Files))
	for _, f := range manifest.Files {
		declared = append(declared, f.FilePath)
	}

	return &domain.GeneratedCodeBundle{
		ArtifactMeta: domain.ArtifactMeta{
			Version:   constants.ArtifactSchemaVersion,
			CreatedAt: now.UTC(),
		},
		ProjectID:                manifest.ProjectID,
		Files:                    files,
		FileStructure:            BuildFileStructure(declared),
		TotalFiles:               len(files),
		TotalLinesOfCode:         countLines(files),
		ImplementedSemanticUnits: collectIDs(files, func(f domain.GeneratedFile) string { return f.SemanticUnitID }),
		ImplementedComponents:    collectIDs(files, func(f domain.GeneratedFile) string { return f.ComponentID }),
		ExternalDependencies:     manifest.ExternalDependencies,
		SetupInstructions:        manifest.SetupInstructions,
	}
}

func countLines(files []domain.GeneratedFile) int {
	total := 0
	for _, f := range files {
		total += domain.CountNonBlankLines(f.Content)
	}
	return total
}

// collectIDs returns the sorted set of non-empty ids picked from files.
func collectIDs(files []domain.GeneratedFile, pick func(domain.GeneratedFile) string) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, f := range files {
		id := strings.TrimSpace(pick(f))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// splitPath splits a slash path into directory and file name. Root-level
// files get ".".
func splitPath(p string) (string, string) {
	clean := path.Clean(strings.ReplaceAll(strings.TrimSpace(p), "\\", "/"))
	clean = strings.TrimPrefix(clean, "./")
	dir, name := path.Split(clean)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = constants.RootDirectory
	}
	return dir, name
}

func joinPath(dir, name string) string {
	if dir == constants.RootDirectory || dir == "" {
		return name
	}
	return dir + "/" + name
}

// normalizePath is the form paths are compared in.
func normalizePath(p string) string {
	dir, name := splitPath(p)
	return joinPath(dir, name)
}
