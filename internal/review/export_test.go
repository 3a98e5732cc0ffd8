package review

// ExactSynonyms exposes the exact-match table to the external test package.
var ExactSynonyms = exactSynonyms //nolint:gochecknoglobals // test-only export
