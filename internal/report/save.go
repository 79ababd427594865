package report

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/aicompliance/internal/model"
)

// Save writes the report as indented JSON into dir and returns the file
// path. The file name is ai_compliance_report_{host}_{YYYYmmdd_HHMMSS}.json.
func Save(dir string, report *model.ComplianceReport) (string, error) {
	if report == nil {
		return "", ErrNilReport
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, FileName(report))
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := NewJSONWriter(f, WithPrettyPrint()).Write(report); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}

// FileName returns the name Save uses for the report.
func FileName(report *model.ComplianceReport) string {
	return fmt.Sprintf("ai_compliance_report_%s_%s.json",
		hostSlug(report.Website), report.GeneratedAt.Format("20060102_150405"))
}

// hostSlug returns the host of website with characters that are unsafe
// in file names replaced.
func hostSlug(website string) string {
	host := website
	if u, err := url.Parse(website); err == nil && u.Host != "" {
		host = u.Host
	}
	if host == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', '?', '*', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, host)
}
