package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/nao1215/aicompliance/internal/crawler"
	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/aicompliance/internal/scoring"
)

// Analyzer runs the crawl-and-score pipeline for one site at a time.
// It is safe for concurrent use; every call builds its own crawler.
type Analyzer struct {
	cfg     *config.Config
	engine  *scoring.Engine
	store   ReportStore
	client  *http.Client
	factory CrawlerFactory
	logger  *slog.Logger
	now     func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithStore stores every report in store.
func WithStore(store ReportStore) AnalyzerOption {
	return func(a *Analyzer) {
		a.store = store
	}
}

// WithHTTPClient sets the HTTP client used by the fetcher.
func WithHTTPClient(client *http.Client) AnalyzerOption {
	return func(a *Analyzer) {
		a.client = client
	}
}

// WithEngine replaces the scoring engine built from the configuration.
func WithEngine(engine *scoring.Engine) AnalyzerOption {
	return func(a *Analyzer) {
		a.engine = engine
	}
}

// WithCrawlerFactory replaces the crawler built from the configuration.
func WithCrawlerFactory(factory CrawlerFactory) AnalyzerOption {
	return func(a *Analyzer) {
		a.factory = factory
	}
}

// WithAnalyzerLogger sets the logger passed to every component.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock sets the report timestamp source.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an Analyzer for cfg.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	a := &Analyzer{cfg: cfg, logger: log.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.engine == nil {
		a.engine = scoring.NewEngine(
			scoring.WithThresholds(scoring.Thresholds{
				MinWordCount:  cfg.MinWordCount,
				MinHeadings:   cfg.MinHeadings,
				MinParagraphs: cfg.MinParagraphs,
			}),
			scoring.WithLanguageDetector(scoring.NewLinguaDetector()),
			scoring.WithEngineLogger(a.logger),
		)
	}
	if a.factory == nil {
		a.factory = a.newCrawler
	}
	return a
}

// Pipeline returns the steps of one analysis: crawl and score, then
// store and save when configured.
func (a *Analyzer) Pipeline() *Pipeline {
	p := New(WithLogger(a.logger))
	p.AddSteps(
		NewCrawlStep(a.factory, a.logger),
		NewScoreStep(a.engine, a.now),
	)
	if a.store != nil {
		p.AddStep(NewStoreStep(a.store, a.logger))
	}
	if a.cfg.SaveDir != "" {
		p.AddStep(NewSaveStep(a.cfg.SaveDir, a.logger))
	}
	return p
}

// Analyze crawls seed and scores it. maxPages > 0 overrides the
// configured budget.
//
// Input errors and cancellation return a nil report. When no page could
// be fetched the degenerate all-zero report is returned together with
// crawler.ErrZeroPages.
func (a *Analyzer) Analyze(ctx context.Context, seed string, maxPages int) (*model.ComplianceReport, error) {
	run, err := a.AnalyzeRun(ctx, seed, maxPages)
	if err != nil {
		return nil, err
	}
	for _, w := range run.Warnings {
		if errors.Is(w, crawler.ErrZeroPages) {
			return run.Report, w
		}
	}
	return run.Report, nil
}

// AnalyzeRun is Analyze returning the full run state.
func (a *Analyzer) AnalyzeRun(ctx context.Context, seed string, maxPages int) (*Run, error) {
	run := NewRun(seed, maxPages)
	if err := a.Pipeline().Execute(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// newCrawler builds a Spider from the configuration and the per-site
// settings of the seed host.
func (a *Analyzer) newCrawler(run *Run) (Crawler, error) {
	seed, err := crawler.ParseSeed(run.Website)
	if err != nil {
		return nil, err
	}
	site := a.cfg.SiteConfigFor(seed.Hostname())

	maxPages := a.cfg.MaxPages
	switch {
	case run.MaxPages > 0:
		maxPages = run.MaxPages
	case site.MaxPages > 0:
		maxPages = site.MaxPages
	}
	run.MaxPages = maxPages

	fetchOpts := []crawler.FetcherOption{
		crawler.WithUserAgent(a.cfg.UserAgent),
		crawler.WithTimeout(a.cfg.Timeout),
		crawler.WithMaxBodySize(a.cfg.MaxBodySize),
		crawler.WithRetries(a.cfg.Retries),
		crawler.WithHeaders(site.Headers),
		crawler.WithCookie(site.Cookie),
	}
	if a.client != nil {
		fetchOpts = append(fetchOpts, crawler.WithHTTPClient(a.client))
	}

	return crawler.NewSpider(crawler.NewFetcher(fetchOpts...),
		crawler.WithMaxPages(maxPages),
		crawler.WithDelay(a.cfg.CrawlDelay),
		crawler.WithConcurrency(a.cfg.Concurrency),
		crawler.WithLinksPerPage(a.cfg.LinksPerPage),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFollowPatterns(site.FollowPatterns),
		crawler.WithLogger(a.logger),
	), nil
}
