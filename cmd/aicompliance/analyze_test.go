package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/nao1215/aicompliance/internal/database"
	"github.com/xuri/excelize/v2"
)

const sitePage = `<!DOCTYPE html>
<html lang="en"><head>
<title>Compliance test site</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
<nav><a href="/one">One</a> <a href="/two">Two</a></nav>
<main><h1>How does this work?</h1><p>This page explains how the analyzer works in detail.</p></main>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, sitePage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// emptyConfig writes an empty config file so that no user config is read.
func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints json report", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		stdout, _, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--no-db",
			"-n", "2", "-d", "0", "-f", "json", srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc map[string]any
		if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout)
		}
		if doc["pages_analyzed"] != float64(2) {
			t.Errorf("expected 2 pages, got %v", doc["pages_analyzed"])
		}
		if doc["website"] != srv.URL {
			t.Errorf("expected website %q, got %v", srv.URL, doc["website"])
		}
	})

	t.Run("prints text report and stores it", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		dbDir := t.TempDir()
		stdout, _, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--db-dir", dbDir,
			"-n", "1", "-d", "0", srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "AI COMPLIANCE SEO REPORT") {
			t.Errorf("expected text report, got:\n%s", stdout)
		}

		db, err := database.Open(dbDir, database.Options{})
		if err != nil {
			t.Fatalf("expected database to exist: %v", err)
		}
		defer db.Close()
		sites, err := db.ListSites(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(sites) != 1 || sites[0].Reports != 1 {
			t.Errorf("expected one stored report, got %+v", sites)
		}
	})

	t.Run("writes xlsx file and saved json", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		dir := t.TempDir()
		out := filepath.Join(dir, "out", "report.xlsx")
		saveDir := filepath.Join(dir, "saved")

		_, stderr, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--no-db",
			"-n", "1", "-d", "0", "-f", "xlsx", "-o", out, "--save", saveDir, srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := excelize.OpenFile(out)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		_ = f.Close()

		matches, err := filepath.Glob(filepath.Join(saveDir, "ai_compliance_report_*.json"))
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 {
			t.Errorf("expected one saved report, got %v", matches)
		}
		if !strings.Contains(stderr, "Report saved to") {
			t.Errorf("expected save notice, got %q", stderr)
		}
	})

	t.Run("unreachable site reports zero scores", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		stdout, _, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--no-db",
			"-n", "1", "-d", "0", "-t", "1s", "-f", "json", url)
		if err != nil {
			t.Fatalf("zero pages must not fail the command: %v", err)
		}
		if !strings.Contains(stdout, `"pages_analyzed": 0`) {
			t.Errorf("expected degenerate report, got:\n%s", stdout)
		}
	})

	t.Run("several sites write one file each", func(t *testing.T) {
		t.Parallel()

		a, b := newSite(t), newSite(t)
		out := filepath.Join(t.TempDir(), "report.md")

		_, _, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--no-db",
			"-n", "1", "-d", "0", "-f", "markdown", "-o", out, "--batch", "2", a.URL, b.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, srv := range []*httptest.Server{a, b} {
			path := perSitePath(out, srv.URL)
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("missing per-site report %s: %v", path, err)
			}
			if !strings.Contains(string(content), "# AI Compliance SEO Report") {
				t.Errorf("unexpected content in %s", path)
			}
		}
	})

	t.Run("requires a url", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runRoot(t, "analyze"); err == nil {
			t.Error("expected error without arguments")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		_, _, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--no-db", "-f", "pdf", "example.com")
		if !errors.Is(err, config.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("rejects invalid delay", func(t *testing.T) {
		t.Parallel()

		_, _, err := runRoot(t, "analyze", "--config", emptyConfig(t), "--no-db", "-d", "soon", "example.com")
		if err == nil || !strings.Contains(err.Error(), "--delay") {
			t.Errorf("expected delay error, got %v", err)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		_, _, err := runRoot(t, "analyze", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "example.com")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	analyze, _, err := cmd.Find([]string{"analyze"})
	if err != nil {
		t.Fatal(err)
	}
	args := []string{"--config", emptyConfig(t), "-n", "7", "-d", "0.25", "--retries", "2", "--no-db"}
	if err := analyze.ParseFlags(args); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(analyze, []string{"example.com", "http://example.org"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxPages != 7 {
		t.Errorf("expected max pages 7, got %d", cfg.MaxPages)
	}
	if cfg.CrawlDelay.Milliseconds() != 250 {
		t.Errorf("expected 250ms delay, got %v", cfg.CrawlDelay)
	}
	if cfg.Retries != 2 || cfg.SaveToDB {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Targets[0] != "https://example.com" || cfg.Targets[1] != "http://example.org" {
		t.Errorf("unexpected targets %v", cfg.Targets)
	}
}

func TestPerSitePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		website string
		want    string
	}{
		{"out/report.json", "https://example.com/", "out/report-example.com.json"},
		{"report", "http://127.0.0.1:8080", "report-127.0.0.1_8080"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := perSitePath(tt.path, tt.website); got != tt.want {
				t.Errorf("perSitePath(%q, %q) = %q, want %q", tt.path, tt.website, got, tt.want)
			}
		})
	}
}
