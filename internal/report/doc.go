// Package report renders a ComplianceReport.
//
// Writers for the supported formats:
//   - TextWriter: terminal output with the category breakdown and actions
//   - JSONWriter: the persisted JSON schema, for tool integration
//   - MarkdownWriter: documentation friendly output with a score chart
//   - XLSXWriter: a workbook with summary, category, check and page sheets
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. Save persists the
// JSON form under the canonical report file name.
package report
