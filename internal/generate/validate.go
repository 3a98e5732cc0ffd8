package generate

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Validate checks a bundle's structural consistency:
//
//   - every file structure entry must have a generated file (error otherwise)
//   - a generated file missing from the structure is logged as a warning
//   - a file path may be generated only once (error otherwise)
//
// When design is non-nil, design components with no implementing file are
// logged; that check never fails the bundle. Validation failures are not retryable.
func Validate(bundle *domain.GeneratedCodeBundle, design *domain.DesignSpec, logger zerolog.Logger) error {
	if bundle == nil {
		return forgeerrors.ErrNilArtifact
	}

	counts := make(map[string]int, len(bundle.Files))
	for _, f := range bundle.Files {
		counts[normalizePath(f.FilePath)]++
	}

	declared := make(map[string]struct{})
	var missing []string
	for _, p := range StructurePaths(bundle.FileStructure) {
		p = normalizePath(p)
		declared[p] = struct{}{}
		if counts[p] == 0 {
			missing = append(missing, p)
		}
	}

	var undeclared []string
	duplicates := make(map[string]int)
	for p, n := range counts {
		if _, ok := declared[p]; !ok {
			undeclared = append(undeclared, p)
		}
		if n > 1 {
			duplicates[p] = n
		}
	}
	if len(undeclared) > 0 {
		sort.Strings(undeclared)
		logger.Warn().
			Strs("file_paths", undeclared).
			Msg("generated files missing from file structure")
	}

	checkComponentCoverage(bundle, design, logger)

	if len(missing) == 0 && len(duplicates) == 0 {
		return nil
	}
	verr := &forgeerrors.StructuralValidationError{Missing: missing}
	if len(duplicates) > 0 {
		verr.Duplicates = duplicates
	}
	logger.Error().Err(verr).Msg("bundle failed structural validation")
	return verr
}

func checkComponentCoverage(bundle *domain.GeneratedCodeBundle, design *domain.DesignSpec, logger zerolog.Logger) {
	if design == nil || len(design.Components) == 0 {
		return
	}
	implemented := make(map[string]struct{}, len(bundle.ImplementedComponents))
	for _, c := range bundle.ImplementedComponents {
		implemented[strings.ToLower(c)] = struct{}{}
	}

	var uncovered []string
	for _, name := range design.ComponentNames() {
		if _, ok := implemented[strings.ToLower(name)]; !ok {
			uncovered = append(uncovered, name)
		}
	}
	if len(uncovered) > 0 {
		logger.Info().
			Strs("components", uncovered).
			Int("covered", len(design.Components)-len(uncovered)).
			Int("total", len(design.Components)).
			Msg("design components without an implementing file")
	}
}
