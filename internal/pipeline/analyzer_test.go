package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/nao1215/aicompliance/internal/crawler"
	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/aicompliance/internal/scoring"
)

const testPage = `<!DOCTYPE html>
<html><head>
<title>Example page title here</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
<header><nav><a href="/a">A</a><a href="/b">B</a></nav></header>
<main><article><h1>What is this?</h1><p>Some text about compliance.</p></article></main>
</body></html>`

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.CrawlDelay = 0
	cfg.Timeout = 2 * time.Second
	cfg.SaveToDB = false
	return cfg
}

func testEngine() *scoring.Engine {
	return scoring.NewEngine(scoring.WithLanguageDetector(nil))
}

var fixedNow = time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

type memoryStore struct {
	mu      sync.Mutex
	reports []*model.ComplianceReport
	err     error
}

func (s *memoryStore) SaveReport(_ context.Context, r *model.ComplianceReport) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.reports = append(s.reports, r)
	return int64(len(s.reports)), nil
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("crawls and scores the site", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		a := NewAnalyzer(testConfig(), WithEngine(testEngine()), WithClock(func() time.Time { return fixedNow }))

		rep, err := a.Analyze(context.Background(), srv.URL, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rep.PagesAnalyzed != 3 {
			t.Errorf("expected 3 pages, got %d", rep.PagesAnalyzed)
		}
		if len(rep.Categories) != len(model.CategoryOrder) {
			t.Errorf("expected %d categories, got %d", len(model.CategoryOrder), len(rep.Categories))
		}
		if rep.MaxScore != 230 {
			t.Errorf("expected max score 230, got %d", rep.MaxScore)
		}
		if rep.Website != srv.URL {
			t.Errorf("expected website %q, got %q", srv.URL, rep.Website)
		}
		if !rep.GeneratedAt.Equal(fixedNow) {
			t.Errorf("expected fixed timestamp, got %v", rep.GeneratedAt)
		}
		if rep.CrawlStats.PagesSucceeded != 3 || len(rep.Pages) != 3 {
			t.Errorf("unexpected crawl data %+v pages=%d", rep.CrawlStats, len(rep.Pages))
		}
		if rep.Percentage <= 0 || rep.Percentage > 100 {
			t.Errorf("percentage out of range: %v", rep.Percentage)
		}
	})

	t.Run("configured budget applies without explicit max pages", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		cfg := testConfig()
		cfg.MaxPages = 2
		a := NewAnalyzer(cfg, WithEngine(testEngine()))

		rep, err := a.Analyze(context.Background(), srv.URL, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rep.PagesAnalyzed != 2 {
			t.Errorf("expected 2 pages, got %d", rep.PagesAnalyzed)
		}
	})

	t.Run("zero pages yields degenerate report", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		a := NewAnalyzer(testConfig(), WithEngine(testEngine()))
		rep, err := a.Analyze(context.Background(), srv.URL, 3)
		if !errors.Is(err, crawler.ErrZeroPages) {
			t.Fatalf("expected ErrZeroPages, got %v", err)
		}
		if rep == nil {
			t.Fatal("expected degenerate report")
		}
		if rep.PagesAnalyzed != 0 || rep.TotalScore != 0 || rep.Percentage != 0 {
			t.Errorf("expected all-zero report, got %+v", rep)
		}
		if rep.Tier != model.TierPoor {
			t.Errorf("expected POOR, got %v", rep.Tier)
		}
		if rep.CrawlStats.PagesFailed != 1 {
			t.Errorf("expected 1 failure, got %+v", rep.CrawlStats)
		}
		for _, c := range rep.Categories {
			for _, check := range c.Checks {
				if check.Passed || check.Detail != scoring.NoPagesDetail {
					t.Errorf("expected failed no-pages check, got %+v", check)
				}
			}
		}
	})

	t.Run("invalid seed is an input error", func(t *testing.T) {
		t.Parallel()

		a := NewAnalyzer(testConfig(), WithEngine(testEngine()))
		rep, err := a.Analyze(context.Background(), "not a url", 3)
		var inputErr *crawler.InputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("expected InputError, got %v", err)
		}
		if rep != nil {
			t.Errorf("expected nil report, got %+v", rep)
		}
	})

	t.Run("stores report", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		store := &memoryStore{}
		a := NewAnalyzer(testConfig(), WithEngine(testEngine()), WithStore(store))

		run, err := a.AnalyzeRun(context.Background(), srv.URL, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.reports) != 1 || run.ReportID != 1 {
			t.Errorf("expected stored report with id 1, got %d reports id=%d", len(store.reports), run.ReportID)
		}
	})

	t.Run("store failure is a warning", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		boom := errors.New("disk full")
		a := NewAnalyzer(testConfig(), WithEngine(testEngine()), WithStore(&memoryStore{err: boom}))

		run, err := a.AnalyzeRun(context.Background(), srv.URL, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Report == nil {
			t.Fatal("expected report")
		}
		if len(run.Warnings) != 1 || !errors.Is(run.Warnings[0], boom) {
			t.Errorf("expected store warning, got %v", run.Warnings)
		}
	})

	t.Run("saves json file", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		cfg := testConfig()
		cfg.SaveDir = t.TempDir()
		a := NewAnalyzer(cfg, WithEngine(testEngine()), WithClock(func() time.Time { return fixedNow }))

		run, err := a.AnalyzeRun(context.Background(), srv.URL, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Dir(run.SavedPath) != cfg.SaveDir {
			t.Errorf("unexpected saved path %q", run.SavedPath)
		}
		if !strings.HasSuffix(run.SavedPath, "_20250506_070809.json") {
			t.Errorf("unexpected file name %q", run.SavedPath)
		}
		if _, err := os.Stat(run.SavedPath); err != nil {
			t.Errorf("saved file missing: %v", err)
		}
	})

	t.Run("site config sends cookie and overrides budget", func(t *testing.T) {
		t.Parallel()

		cookies := make(chan string, 10)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookies <- r.Header.Get("Cookie")
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, testPage)
		}))
		t.Cleanup(srv.Close)

		cfg := testConfig()
		cfg.ApplyFile(&config.File{
			Sites: map[string]config.SiteConfig{
				"127.0.0.1": {Cookie: "session=abc", MaxPages: 1},
			},
		})
		a := NewAnalyzer(cfg, WithEngine(testEngine()))

		rep, err := a.Analyze(context.Background(), srv.URL, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rep.PagesAnalyzed != 1 {
			t.Errorf("expected site budget of 1, got %d", rep.PagesAnalyzed)
		}
		if got := <-cookies; got != "session=abc" {
			t.Errorf("expected cookie, got %q", got)
		}
	})

	t.Run("pipeline steps follow configuration", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		if got := NewAnalyzer(cfg, WithEngine(testEngine())).Pipeline().StepNames(); strings.Join(got, ",") != "crawl,score" {
			t.Errorf("unexpected steps %v", got)
		}

		cfg.SaveDir = t.TempDir()
		got := NewAnalyzer(cfg, WithEngine(testEngine()), WithStore(&memoryStore{})).Pipeline().StepNames()
		if strings.Join(got, ",") != "crawl,score,store,save" {
			t.Errorf("unexpected steps %v", got)
		}
	})
}

type stubCrawler struct {
	result *crawler.CrawlResult
	err    error
}

func (c stubCrawler) Crawl(context.Context, string) (*crawler.CrawlResult, error) {
	return c.result, c.err
}

func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("cancellation is fatal", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(func(*Run) (Crawler, error) {
			return stubCrawler{result: &crawler.CrawlResult{}, err: context.Canceled}, nil
		}, nil)
		if err := step.Do(context.Background(), NewRun("https://example.com", 1)); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("factory error is returned", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		step := NewCrawlStep(func(*Run) (Crawler, error) { return nil, boom }, nil)
		if err := step.Do(context.Background(), NewRun("https://example.com", 1)); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}

func TestStepsWithoutReport(t *testing.T) {
	t.Parallel()

	run := NewRun("https://example.com", 1)
	if err := NewStoreStep(&memoryStore{}, nil).Do(context.Background(), run); !errors.Is(err, ErrNoReport) {
		t.Errorf("expected ErrNoReport from store, got %v", err)
	}
	if err := NewSaveStep(t.TempDir(), nil).Do(context.Background(), run); !errors.Is(err, ErrNoReport) {
		t.Errorf("expected ErrNoReport from save, got %v", err)
	}
}
