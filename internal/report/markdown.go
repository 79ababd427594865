package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ComplianceReport) (int, error) {
	if report == nil {
		return 0, ErrNilReport
	}
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCategories(md, report)
	w.writeActions(md, report)
	w.writeDetails(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary table and the tier alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ComplianceReport) {
	md.H1("AI Compliance SEO Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Website", "`" + report.Website + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Analyzed", strconv.Itoa(report.PagesAnalyzed)},
			{"Overall Score", fmt.Sprintf("%.1f / %d (%.1f%%)", report.TotalScore, report.MaxScore, report.Percentage)},
			{"Compliance Level", report.Tier.Label()},
		},
	})
	md.PlainText("")
	w.writeAlert(md, report)
}

// writeAlert maps the tier to an alert block.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ComplianceReport) {
	switch report.Tier {
	case model.TierExcellent:
		md.Tip(report.Recommendation)
	case model.TierGood:
		md.Note(report.Recommendation)
	case model.TierModerate:
		md.Warningf("%s", report.Recommendation)
	default:
		md.Cautionf("%s", report.Recommendation)
	}
	md.PlainText("")
}

// writeCategories writes the category table and the score share chart.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, report *model.ComplianceReport) {
	md.H2("Category Scores")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Categories))
	for _, c := range report.Categories {
		rows = append(rows, []string{
			categoryTitle(c),
			fmt.Sprintf("%.1f", c.Score),
			fmt.Sprintf("%.0f", c.Max),
			fmt.Sprintf("%.1f%%", c.Percentage()),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Max", "Percentage"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.TotalScore > 0 {
		w.writePieChart(md, report)
	}
}

// writePieChart writes a mermaid pie chart of the points earned per category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ComplianceReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Points by Category"),
		piechart.WithShowData(true),
	)
	for _, c := range report.Categories {
		if c.Score <= 0 {
			continue
		}
		chart.LabelAndIntValue(categoryTitle(c), uint64(math.Round(c.Score)))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeActions writes the priority actions as a numbered list.
func (w *MarkdownWriter) writeActions(md *markdown.Markdown, report *model.ComplianceReport) {
	md.H2("Priority Actions")
	md.PlainText("")
	if len(report.PriorityActions) == 0 {
		md.PlainText("No actions.")
		md.PlainText("")
		return
	}
	md.OrderedList(report.PriorityActions...)
	md.PlainText("")
}

// writeDetails writes one check table per category.
func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, report *model.ComplianceReport) {
	md.H2("Detailed Breakdown")
	md.PlainText("")

	for _, c := range report.Categories {
		md.H3(categoryTitle(c))
		md.PlainText("")
		if len(c.Checks) == 0 {
			md.PlainText("No checks recorded.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, 0, len(c.Checks))
		for _, check := range c.Checks {
			status := "❌"
			if check.Passed {
				status = "✅"
			}
			rows = append(rows, []string{
				check.Label,
				status,
				truncateString(check.Detail, 60),
				fmt.Sprintf("%.1f", check.Points),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Check", "Passed", "Detail", "Points"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writePages writes the analyzed pages and the crawl statistics.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.ComplianceReport) {
	md.H2("Crawl")
	md.PlainText("")

	stats := report.CrawlStats
	md.BulletList(
		fmt.Sprintf("Attempted: %d", stats.PagesAttempted),
		fmt.Sprintf("Succeeded: %d", stats.PagesSucceeded),
		fmt.Sprintf("Failed: %d", stats.PagesFailed),
		fmt.Sprintf("Duplicate content: %d", stats.DuplicateContent),
	)
	md.PlainText("")

	if len(report.Pages) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		rows = append(rows, []string{
			truncateString(p.URL, 60),
			strconv.Itoa(p.StatusCode),
			fmt.Sprintf("%.0f", p.ElapsedMS),
			strconv.Itoa(p.WordCount),
			languageName(p.Language),
			truncateString(p.Title, 40),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Time (ms)", "Words", "Lang", "Title"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [aicompliance](https://github.com/nao1215/aicompliance)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
