package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/aicompliance/internal/model"
)

// bannerWidth is the width of the separator lines.
const bannerWidth = 60

// TextWriter outputs reports in a human-readable terminal format.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report.
func (w *TextWriter) Write(report *model.ComplianceReport) (int, error) {
	if report == nil {
		return 0, ErrNilReport
	}
	var sb strings.Builder
	banner := strings.Repeat("=", bannerWidth)

	sb.WriteString("\n" + banner + "\n")
	sb.WriteString("🤖 AI COMPLIANCE SEO REPORT\n")
	sb.WriteString(banner + "\n")
	fmt.Fprintf(&sb, "🌐 Website: %s\n", report.Website)
	fmt.Fprintf(&sb, "📊 Overall Score: %.1f%%\n", report.Percentage)
	fmt.Fprintf(&sb, "🎯 Compliance Level: %s\n", report.Tier.Label())
	fmt.Fprintf(&sb, "💡 Recommendation: %s\n", report.Recommendation)
	fmt.Fprintf(&sb, "📄 Pages Analyzed: %d\n", report.PagesAnalyzed)

	sb.WriteString("\n📋 DETAILED BREAKDOWN:\n")
	for _, c := range report.Categories {
		fmt.Fprintf(&sb, "  • %s: %.1f/%.0f (%.1f%%)\n", categoryTitle(c), c.Score, c.Max, c.Percentage())
	}

	sb.WriteString("\n🚀 PRIORITY ACTIONS:\n")
	for i, action := range report.PriorityActions {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, action)
	}

	sb.WriteString("\n" + banner + "\n")
	return io.WriteString(w.output, sb.String())
}
