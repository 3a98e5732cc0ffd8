package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/mrz1836/forge/internal/domain"
)

const markdownWrap = 80

var (
	markdownRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer
	markdownRendererOnce sync.Once             //nolint:gochecknoglobals // guards markdownRenderer
)

func getMarkdownRenderer() *glamour.TermRenderer {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(markdownWrap),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	return markdownRenderer
}

// PostmortemMarkdown formats a postmortem report as markdown.
func PostmortemMarkdown(report *domain.PostmortemReport) string {
	var b strings.Builder
	b.WriteString("## Postmortem\n\n")
	b.WriteString(report.Summary)
	fmt.Fprintf(&b, "\n\n**Defects:** %d\n", report.DefectCount)
	if len(report.Lessons) > 0 {
		b.WriteString("\n### Lessons\n\n")
		for _, l := range report.Lessons {
			b.WriteString("- " + l + "\n")
		}
	}
	return b.String()
}

// RenderPostmortem writes the postmortem rendered as terminal markdown,
// or as raw markdown when no renderer is available.
func RenderPostmortem(w io.Writer, report *domain.PostmortemReport) {
	if report == nil {
		return
	}
	md := PostmortemMarkdown(report)
	if r := getMarkdownRenderer(); r != nil {
		if rendered, err := r.Render(md); err == nil {
			md = rendered
		}
	}
	_, _ = io.WriteString(w, md)
}
