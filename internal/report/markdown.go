package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/leadlens/leadlens/internal/model"
)

// MarkdownWriter outputs run results in Markdown format.
// This format is designed for review and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// maxLeads caps how many leads the lead table renders.
	maxLeads int
}

// MarkdownOption configures a MarkdownWriter.
type MarkdownOption func(*MarkdownWriter)

// WithMaxLeads caps the rendered lead table. Default is 25.
func WithMaxLeads(n int) MarkdownOption {
	return func(w *MarkdownWriter) {
		if n > 0 {
			w.maxLeads = n
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		maxLeads:   25,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full run result in Markdown format.
func (w *MarkdownWriter) Write(result *model.RunResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeLeads(md, result)
	w.writeSynthesis(md, result)
	w.writeErrors(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.RunResult) {
	md.H1("Lead Discovery Report")
	md.PlainText("")

	rows := [][]string{
		{"Run ID", "`" + result.RunID + "`"},
		{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Leads", strconv.Itoa(len(result.Leads))},
		{"Status", w.statusText(result)},
	}
	if result.Query != nil {
		rows = append(rows,
			[]string{"Vertical", string(result.Query.Vertical)},
			[]string{"Location", result.Query.Geo.City + ", " + result.Query.Geo.State},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, warning := range result.Warnings {
		md.Warningf("%s", warning)
		md.PlainText("")
	}
}

// statusText returns the run status text.
func (w *MarkdownWriter) statusText(result *model.RunResult) string {
	switch {
	case result.PipelineSuccess && len(result.Errors) == 0:
		return "✅ Complete"
	case result.PipelineSuccess:
		return fmt.Sprintf("⚠️ Complete with %d stage error(s)", len(result.Errors))
	default:
		return "❌ No leads produced"
	}
}

// writeLeads writes the ranked lead table.
func (w *MarkdownWriter) writeLeads(md *markdown.Markdown, result *model.RunResult) {
	md.H2("Ranked Leads")
	md.PlainText("")

	if len(result.Leads) == 0 {
		md.PlainText("No leads matched this run's constraints.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(result.Leads))
	for i, lead := range result.Leads {
		if i >= w.maxLeads {
			break
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			lead.Candidate.Name,
			fmt.Sprintf("%.0f", lead.Score),
			websiteCell(lead),
			strings.Join(lead.ReasonCodes, ", "),
			suggestionCell(lead),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Business", "Score", "Website", "Reasons", "Suggested Packages"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.Leads) > w.maxLeads {
		md.PlainTextf("…and %d more leads.", len(result.Leads)-w.maxLeads)
		md.PlainText("")
	}
}

// websiteCell renders the website column, flagging audited sites with
// their evidence confidence.
func websiteCell(lead model.Lead) string {
	if lead.Candidate.Website == "" {
		return "none"
	}
	if lead.Audit == nil {
		return lead.Candidate.Website + " (unaudited)"
	}
	return fmt.Sprintf("%s (evidence %.0f%%)", lead.Candidate.Website, lead.Audit.ConfidenceScore*100)
}

// suggestionCell renders package suggestions as "code (confidence)".
func suggestionCell(lead model.Lead) string {
	if len(lead.Suggestions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(lead.Suggestions))
	for _, s := range lead.Suggestions {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", s.Code, s.Confidence))
	}
	return strings.Join(parts, ", ")
}

// writeSynthesis writes the recommendation section.
func (w *MarkdownWriter) writeSynthesis(md *markdown.Markdown, result *model.RunResult) {
	if result.Synthesis == nil {
		return
	}
	md.H2("Recommendation")
	md.PlainText("")
	if result.Synthesis.Degraded {
		md.Note("Synthesis collaborator unavailable; this summary is the fixed fallback.")
		md.PlainText("")
	}
	md.PlainText(result.Synthesis.Recommendation)
	md.PlainText("")
	if result.Synthesis.RankedSummary != "" {
		md.PlainText(result.Synthesis.RankedSummary)
		md.PlainText("")
	}
	if len(result.Synthesis.ConfidenceReasons) > 0 {
		md.H3("Confidence")
		md.BulletList(result.Synthesis.ConfidenceReasons...)
		md.PlainText("")
	}
}

// writeErrors writes the contained stage error log.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, result *model.RunResult) {
	if len(result.Errors) == 0 {
		return
	}
	md.H2("Stage Errors")
	md.PlainText("")
	rows := make([][]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		rows = append(rows, []string{e.Stage, e.Message})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}
