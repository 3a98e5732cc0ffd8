package review

import (
	"strings"

	"github.com/mrz1836/forge/internal/domain"
)

// exactSynonyms maps a normalized category string to its canonical category.
//
//nolint:gochecknoglobals // Read-only lookup table
var exactSynonyms = map[string]domain.Category{
	"security":       domain.CategorySecurity,
	"authentication": domain.CategorySecurity,
	"authorization":  domain.CategorySecurity,
	"vulnerability":  domain.CategorySecurity,

	"performance":  domain.CategoryPerformance,
	"optimization": domain.CategoryPerformance,
	"caching":      domain.CategoryPerformance,
	"latency":      domain.CategoryPerformance,

	"maintainability": domain.CategoryMaintainability,
	"god component":   domain.CategoryMaintainability,
	"code smell":      domain.CategoryMaintainability,
	"coupling":        domain.CategoryMaintainability,
	"complexity":      domain.CategoryMaintainability,

	"data integrity": domain.CategoryDataIntegrity,
	"integrity":      domain.CategoryDataIntegrity,
	"consistency":    domain.CategoryDataIntegrity,
	"transaction":    domain.CategoryDataIntegrity,
	"validation":     domain.CategoryDataIntegrity,

	"api design": domain.CategoryAPIDesign,
	"api":        domain.CategoryAPIDesign,
	"endpoint":   domain.CategoryAPIDesign,
	"rest":       domain.CategoryAPIDesign,

	"interface contract": domain.CategoryAPIDesign,

	"architecture": domain.CategoryArchitecture,
	"design":       domain.CategoryArchitecture,
	"scalability":  domain.CategoryArchitecture,
	"modularity":   domain.CategoryArchitecture,
}

// substringKeywords is checked in order when no exact synonym matches.
// Short or ambiguous words ("api", "rest", "design") are exact-only.
//
//nolint:gochecknoglobals // Read-only lookup table
var substringKeywords = []struct {
	keyword  string
	category domain.Category
}{
	{"security", domain.CategorySecurity},
	{"authentication", domain.CategorySecurity},
	{"authorization", domain.CategorySecurity},
	{"vulnerab", domain.CategorySecurity},
	{"performance", domain.CategoryPerformance},
	{"optimization", domain.CategoryPerformance},
	{"caching", domain.CategoryPerformance},
	{"latency", domain.CategoryPerformance},
	{"maintainab", domain.CategoryMaintainability},
	{"god component", domain.CategoryMaintainability},
	{"code smell", domain.CategoryMaintainability},
	{"coupling", domain.CategoryMaintainability},
	{"data integrity", domain.CategoryDataIntegrity},
	{"integrity", domain.CategoryDataIntegrity},
	{"consistency", domain.CategoryDataIntegrity},
	{"transaction", domain.CategoryDataIntegrity},
	{"validation", domain.CategoryDataIntegrity},
	{"api design", domain.CategoryAPIDesign},
	{"endpoint", domain.CategoryAPIDesign},
	{"interface contract", domain.CategoryAPIDesign},
	{"architect", domain.CategoryArchitecture},
}

// NormalizeCategory maps a free-form category string to a canonical category.
// Matching is case-insensitive; underscores and dashes count as spaces.
// Anything unrecognized falls back to Architecture.
func NormalizeCategory(raw string) domain.Category {
	key := canonicalKey(raw)
	if key == "" {
		return domain.CategoryArchitecture
	}
	if c, ok := exactSynonyms[key]; ok {
		return c
	}
	for _, kw := range substringKeywords {
		if strings.Contains(key, kw.keyword) {
			return kw.category
		}
	}
	return domain.CategoryArchitecture
}

func canonicalKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return strings.Join(strings.Fields(key), " ")
}

// normalizeSeverity maps severity spellings onto the canonical values.
// Unknown severities on an issue are counted as Medium.
func normalizeSeverity(raw domain.Severity) domain.Severity {
	switch strings.ToLower(strings.TrimSpace(string(raw))) {
	case "critical", "blocker":
		return domain.SeverityCritical
	case "high", "major":
		return domain.SeverityHigh
	case "low", "minor", "info":
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}
