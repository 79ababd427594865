package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/aicompliance/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	SheetSummary    = "Summary"
	SheetCategories = "Categories"
	SheetChecks     = "Checks"
	SheetPages      = "Pages"
)

// XLSXWriter outputs reports as an Excel workbook with one sheet per
// section.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write builds the workbook and streams it to the output.
func (w *XLSXWriter) Write(report *model.ComplianceReport) (int, error) {
	if report == nil {
		return 0, ErrNilReport
	}
	f, err := buildWorkbook(report)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck // workbook is in memory

	n, err := f.WriteTo(w.output)
	return int(n), err
}

func buildWorkbook(report *model.ComplianceReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetCategories, SheetChecks, SheetPages} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	sheets := map[string][][]any{
		SheetSummary:    summaryRows(report),
		SheetCategories: categoryRows(report),
		SheetChecks:     checkRows(report),
		SheetPages:      pageRows(report),
	}
	for name, rows := range sheets {
		if err := writeRows(f, name, rows, header); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	return f, nil
}

// writeRows writes rows starting at A1 and styles the first row.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func summaryRows(report *model.ComplianceReport) [][]any {
	return [][]any{
		{"Property", "Value"},
		{"Website", report.Website},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Pages Analyzed", report.PagesAnalyzed},
		{"Overall Score", model.Round1(report.TotalScore)},
		{"Max Score", report.MaxScore},
		{"Percentage", model.Round1(report.Percentage)},
		{"Compliance Level", tierName(report.Tier)},
		{"Recommendation", report.Recommendation},
	}
}

func categoryRows(report *model.ComplianceReport) [][]any {
	rows := [][]any{{"Key", "Category", "Score", "Max", "Percentage"}}
	for _, c := range report.Categories {
		rows = append(rows, []any{
			string(c.Key), categoryTitle(c), model.Round1(c.Score), c.Max, model.Round1(c.Percentage()),
		})
	}
	return rows
}

func checkRows(report *model.ComplianceReport) [][]any {
	rows := [][]any{{"Category", "Check", "Passed", "Detail", "Points"}}
	for _, c := range report.Categories {
		for _, check := range c.Checks {
			rows = append(rows, []any{
				categoryTitle(c), check.Label, strconv.FormatBool(check.Passed), check.Detail, check.Points,
			})
		}
	}
	return rows
}

func pageRows(report *model.ComplianceReport) [][]any {
	rows := [][]any{{"URL", "Status", "Time (ms)", "Words", "Language", "Title"}}
	for _, p := range report.Pages {
		rows = append(rows, []any{p.URL, p.StatusCode, p.ElapsedMS, p.WordCount, languageName(p.Language), p.Title})
	}
	return rows
}
