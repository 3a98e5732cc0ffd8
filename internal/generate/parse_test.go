package generate

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"go fence", "```go\npackage main\n```", "package main"},
		{"bare fence", "```\nline one\nline two\n```\n", "line one\nline two"},
		{"surrounding whitespace", "\n  ```python\nprint(1)\n```  \n", "print(1)"},
		{"language with plus", "```c++\nint x;\n```", "int x;"},
		{"no fence", "package main\n", "package main\n"},
		{"inner fence kept", "```markdown\n# Title\n```sh\nls\n```\n```", "# Title\n```sh\nls\n```"},
		{"fence in the middle is not stripped", "intro\n```go\nx\n```\noutro", "intro\n```go\nx\n```\noutro"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestParseManifest_RecomputesTotals(t *testing.T) {
	text := "```json\n" + `{"project_id":"p","files":[{"file_path":"a.go","estimated_lines":30},{"file_path":"b.go","estimated_lines":12}]}` + "\n```"

	m, err := ParseManifest(text, 500)

	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalFiles)
	assert.Equal(t, 42, m.TotalEstimatedLines)
}

func TestParseManifest_FallsBackToWholeText(t *testing.T) {
	// A fenced block that is not valid JSON falls through to the whole text,
	// which is also invalid here, so the parse fails.
	text := "```json\n{not json}\n```"

	_, err := ParseManifest(text, 500)

	require.ErrorIs(t, err, forgeerrors.ErrGenerationParse)
}

func TestParseBundle_RedactsPreview(t *testing.T) {
	secret := "ghp_" + "xxxxxxxxxxTESTONLYxxxxxxxxxx"

	_, err := ParseBundle("token "+secret+" and no json", 500)

	genErr, ok := forgeerrors.AsGenerationError(err)
	require.True(t, ok)
	assert.NotContains(t, genErr.Preview, "TESTONLY")
	assert.NotContains(t, genErr.Error(), "TESTONLY")
}

func TestBuildFileStructure(t *testing.T) {
	structure := BuildFileStructure([]string{
		"main.go",
		"./go.mod",
		"internal/api/handler.go",
		"internal/api/router.go",
		"internal/api/handler.go",
		`web\static\app.js`,
	})

	assert.Equal(t, map[string][]string{
		".":            {"go.mod", "main.go"},
		"internal/api": {"handler.go", "router.go"},
		"web/static":   {"app.js"},
	}, structure)
	assert.Equal(t, []string{
		"go.mod",
		"internal/api/handler.go",
		"internal/api/router.go",
		"main.go",
		"web/static/app.js",
	}, StructurePaths(structure))
}

func TestValidate(t *testing.T) {
	file := func(p string) domain.GeneratedFile { return domain.GeneratedFile{FilePath: p, Content: "x"} }

	t.Run("consistent bundle", func(t *testing.T) {
		b := &domain.GeneratedCodeBundle{
			Files:         []domain.GeneratedFile{file("main.go"), file("pkg/a.go")},
			FileStructure: map[string][]string{".": {"main.go"}, "pkg": {"a.go"}},
		}
		require.NoError(t, Validate(b, nil, zerolog.Nop()))
	})

	t.Run("undeclared file only warns", func(t *testing.T) {
		var buf bytes.Buffer
		b := &domain.GeneratedCodeBundle{
			Files:         []domain.GeneratedFile{file("main.go"), file("extra.go")},
			FileStructure: map[string][]string{".": {"main.go"}},
		}
		require.NoError(t, Validate(b, nil, zerolog.New(&buf)))
		assert.Contains(t, buf.String(), "extra.go")
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("missing and duplicate both reported", func(t *testing.T) {
		b := &domain.GeneratedCodeBundle{
			Files:         []domain.GeneratedFile{file("a.go"), file("a.go"), file("./a.go")},
			FileStructure: map[string][]string{".": {"a.go", "b.go"}},
		}
		err := Validate(b, nil, zerolog.Nop())

		var verr *forgeerrors.StructuralValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"b.go"}, verr.Missing)
		assert.Equal(t, map[string]int{"a.go": 3}, verr.Duplicates)
	})

	t.Run("component coverage is logging only", func(t *testing.T) {
		var buf bytes.Buffer
		b := &domain.GeneratedCodeBundle{
			Files:                 []domain.GeneratedFile{file("main.go")},
			FileStructure:         map[string][]string{".": {"main.go"}},
			ImplementedComponents: []string{"API"},
		}
		design := &domain.DesignSpec{Components: []domain.DesignComponent{{Name: "api"}, {Name: "billing"}}}

		require.NoError(t, Validate(b, design, zerolog.New(&buf)))
		assert.Contains(t, buf.String(), "billing")
		assert.NotContains(t, buf.String(), `"api"`)
	})

	t.Run("nil bundle", func(t *testing.T) {
		require.ErrorIs(t, Validate(nil, nil, zerolog.Nop()), forgeerrors.ErrNilArtifact)
	})
}
