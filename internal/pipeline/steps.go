package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/aicompliance/internal/crawler"
	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/aicompliance/internal/report"
	"github.com/nao1215/aicompliance/internal/scoring"
)

// Crawler is the part of crawler.Spider the crawl step needs.
type Crawler interface {
	Crawl(ctx context.Context, seed string) (*crawler.CrawlResult, error)
}

// CrawlerFactory builds the crawler for one run. Per-site settings such
// as cookies and patterns are resolved by the factory.
type CrawlerFactory func(run *Run) (Crawler, error)

// CrawlStep discovers and fetches the pages of the site.
type CrawlStep struct {
	factory CrawlerFactory
	logger  *slog.Logger
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(factory CrawlerFactory, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = log.Discard()
	}
	return &CrawlStep{factory: factory, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls run.Website. An empty crawl is recorded as a warning and the
// run continues with no pages so that a degenerate report is produced.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	c, err := s.factory(run)
	if err != nil {
		return err
	}

	result, err := c.Crawl(ctx, run.Website)
	switch {
	case errors.Is(err, crawler.ErrZeroPages):
		s.logger.Warn("no page could be fetched", "website", run.Website)
		run.Warn(err)
	case err != nil:
		return err
	}
	if result == nil {
		result = &crawler.CrawlResult{}
	}
	run.Crawl = result

	s.logger.Info("crawl finished",
		"website", run.Website,
		"pages", len(result.Pages),
		"failed", result.Stats.PagesFailed,
	)
	return nil
}

// ScoreStep runs the scoring engine and aggregates the report.
type ScoreStep struct {
	engine *scoring.Engine
	now    func() time.Time
}

// NewScoreStep creates a ScoreStep. A nil now uses time.Now.
func NewScoreStep(engine *scoring.Engine, now func() time.Time) *ScoreStep {
	if now == nil {
		now = time.Now
	}
	return &ScoreStep{engine: engine, now: now}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do scores the crawled pages. Without a crawl result it scores an empty
// page set.
func (s *ScoreStep) Do(ctx context.Context, run *Run) error {
	var pages []*model.PageRecord
	var stats model.CrawlStats
	if run.Crawl != nil {
		pages = run.Crawl.Pages
		stats = run.Crawl.Stats
	}

	eval, err := s.engine.Score(ctx, run.Website, pages)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}
	run.Evaluation = eval

	rep := scoring.Aggregate(run.Website, len(pages), eval.Categories, s.now())
	rep.CrawlStats = stats
	rep.Pages = eval.Pages
	run.Report = rep
	return nil
}

// ReportStore persists reports. database.ReportDB implements it.
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.ComplianceReport) (int64, error)
}

// StoreStep writes the report to the history database.
type StoreStep struct {
	store  ReportStore
	logger *slog.Logger
}

// NewStoreStep creates a StoreStep.
func NewStoreStep(store ReportStore, logger *slog.Logger) *StoreStep {
	if logger == nil {
		logger = log.Discard()
	}
	return &StoreStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do saves run.Report. A storage failure does not invalidate the
// analysis and is recorded as a warning.
func (s *StoreStep) Do(ctx context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}
	id, err := s.store.SaveReport(ctx, run.Report)
	if err != nil {
		s.logger.Warn("failed to store report", "website", run.Website, "error", err)
		run.Warn(err)
		return nil
	}
	run.ReportID = id
	return nil
}

// SaveStep writes the report as a timestamped JSON file.
type SaveStep struct {
	dir    string
	logger *slog.Logger
}

// NewSaveStep creates a SaveStep writing into dir.
func NewSaveStep(dir string, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = log.Discard()
	}
	return &SaveStep{dir: dir, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do writes run.Report into the directory.
func (s *SaveStep) Do(_ context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}
	path, err := report.Save(s.dir, run.Report)
	if err != nil {
		return err
	}
	run.SavedPath = path
	s.logger.Info("report saved", "path", path)
	return nil
}
