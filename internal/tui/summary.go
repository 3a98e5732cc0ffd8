package tui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

const (
	timeLayout = "2006-01-02 15:04:05"

	// maxCellWidth bounds free-text cells so tables fit a terminal.
	maxCellWidth = 48
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

// RenderResult writes the per-stage summary of a pipeline run, followed by
// the override audit trail when any gate was overridden.
func RenderResult(w io.Writer, result *domain.PipelineExecutionResult) {
	if result == nil {
		return
	}

	_, _ = fmt.Fprintf(w, "%s %s  %s\n",
		StyleBold.Render("Task"), result.TaskID, RenderVerdict(result.OverallStatus))

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Stage", "Verdict", "Attempts", "Critical", "High"})
	tw.AppendRow(table.Row{constants.StagePlan, producedVerdict(result.Plan != nil), "-", "-", "-"})
	tw.AppendRow(reviewRow(constants.StageDesign, result.DesignVerdict, result.DesignIterations, result.DesignReview))
	tw.AppendRow(reviewRow(constants.StageCode, result.CodeVerdict, result.CodeIterations, result.CodeReview))
	tw.AppendRow(table.Row{constants.StageTest, RenderVerdict(result.TestVerdict), result.TestRetries + boolToInt(result.Test != nil), "-", "-"})
	tw.AppendRow(table.Row{constants.StagePostmortem, producedVerdict(result.Postmortem != nil), "-", "-", "-"})
	tw.Render()

	if len(result.Overrides) > 0 {
		RenderOverrides(w, result.Overrides)
	}

	_, _ = fmt.Fprintf(w, "Duration: %s\n", (time.Duration(result.DurationMs) * time.Millisecond).String())
}

// RenderOverrides writes the gate override audit trail.
func RenderOverrides(w io.Writer, overrides []domain.HITLOverrideRecord) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Gate", "Decision", "Review", "Critical", "High", "At"})
	for _, o := range overrides {
		tw.AppendRow(table.Row{o.GateName, o.Decision, o.ReviewID, o.CriticalCount, o.HighCount, o.Timestamp.Format(timeLayout)})
	}
	tw.Render()
}

// RenderFindings writes a review's issues, then its suggestions.
func RenderFindings(w io.Writer, report *domain.ReviewReport) {
	if report == nil {
		return
	}

	c := report.Counts()
	_, _ = fmt.Fprintf(w, "%s review %s  %s  critical=%d high=%d medium=%d low=%d\n",
		report.Kind, report.ReviewID, RenderVerdict(report.Verdict), c.Critical, c.High, c.Medium, c.Low)

	if len(report.Issues) > 0 {
		tw := newTable(w)
		tw.AppendHeader(table.Row{"Severity", "Category", "Title", "Component"})
		for _, f := range report.Issues {
			tw.AppendRow(table.Row{f.Severity, f.Category, truncate(f.Title), truncate(f.AffectedComponent)})
		}
		tw.Render()
	}

	if len(report.Suggestions) > 0 {
		tw := newTable(w)
		tw.AppendHeader(table.Row{"Priority", "Category", "Suggestion", "Component"})
		for _, f := range report.Suggestions {
			tw.AppendRow(table.Row{f.Priority, f.Category, truncate(f.Title), truncate(f.AffectedComponent)})
		}
		tw.Render()
	}

	for _, af := range report.AnalyzerFailures {
		_, _ = fmt.Fprintf(w, "analyzer %s failed: %s\n", af.Analyzer, af.Error)
	}
}

// RenderResultList writes one row per stored run.
func RenderResultList(w io.Writer, results []*domain.PipelineExecutionResult) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Task", "Status", "Design", "Code", "Test", "Overrides", "Started"})
	for _, r := range results {
		tw.AppendRow(table.Row{
			r.TaskID,
			r.OverallStatus,
			r.DesignVerdict,
			r.CodeVerdict,
			r.TestVerdict,
			strconv.Itoa(len(r.Overrides)),
			r.StartedAt.Format(timeLayout),
		})
	}
	tw.Render()
}

func reviewRow(stage constants.Stage, v constants.Verdict, attempts int, report *domain.ReviewReport) table.Row {
	critical, high := "-", "-"
	if report != nil {
		critical = strconv.Itoa(report.CriticalIssueCount)
		high = strconv.Itoa(report.HighIssueCount)
	}
	return table.Row{stage, RenderVerdict(v), attempts, critical, high}
}

// truncate shortens s to maxCellWidth display columns.
func truncate(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "…")
}

func producedVerdict(ok bool) string {
	if ok {
		return RenderVerdict(constants.VerdictPass)
	}
	return RenderVerdict("")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
