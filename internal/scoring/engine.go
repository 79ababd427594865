package scoring

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
)

// Engine extracts page signals and runs every registered category
// scorer.
type Engine struct {
	scorers     []CategoryScorer
	thresholds  Thresholds
	language    LanguageDetector
	parallelism int
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds sets the content targets.
func WithThresholds(th Thresholds) EngineOption {
	return func(e *Engine) {
		e.thresholds = th.withDefaults()
	}
}

// WithLanguageDetector sets the detector used for page summaries.
// nil disables language detection.
func WithLanguageDetector(d LanguageDetector) EngineOption {
	return func(e *Engine) {
		e.language = d
	}
}

// WithParallelism bounds the number of pages processed at once.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine with the six built-in category scorers
// registered in analysis order.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		thresholds:  DefaultThresholds(),
		language:    NewLinguaDetector(),
		parallelism: 4,
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.Register(NewContentScorer(e.thresholds))
	e.Register(NewTechnicalScorer())
	e.Register(NewSemanticScorer())
	e.Register(NewAIReadinessScorer())
	e.Register(NewEEATScorer())
	e.Register(NewMobileScorer())
	return e
}

// Register adds a scorer. Results are reported in registration order.
func (e *Engine) Register(s CategoryScorer) {
	e.scorers = append(e.scorers, s)
}

// Scorers returns the registered scorers.
func (e *Engine) Scorers() []CategoryScorer {
	return e.scorers
}

// Evaluation is the output of Engine.Score.
type Evaluation struct {
	Categories []model.CategoryResult
	Pages      []model.PageSummary
}

// Score evaluates pages. website is the seed URL; its scheme decides the
// SSL check. Scorers run in parallel but results keep registration order.
func (e *Engine) Score(ctx context.Context, website string, pages []*model.PageRecord) (*Evaluation, error) {
	signals := make([]*PageSignals, len(pages))
	summaries := make([]model.PageSummary, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sig := ExtractSignals(page)
			signals[i] = sig
			summaries[i] = e.summarize(page, sig)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	site := NewSite(website, signals)
	results := make([]model.CategoryResult, len(e.scorers))
	g, gctx = errgroup.WithContext(ctx)
	for i, scorer := range e.scorers {
		g.Go(func() error {
			res, err := scorer.Score(gctx, site)
			if err != nil {
				return err
			}
			results[i] = res
			e.logger.Debug("category scored", "category", string(res.Key), "score", res.Score, "max", res.Max)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Evaluation{Categories: results, Pages: summaries}, nil
}

func (e *Engine) summarize(page *model.PageRecord, sig *PageSignals) model.PageSummary {
	summary := model.PageSummary{
		URL:         page.URL,
		StatusCode:  page.StatusCode,
		ElapsedMS:   page.ElapsedMS,
		Title:       sig.Title,
		WordCount:   sig.WordCount(),
		ContentHash: page.ContentHash,
	}
	if e.language != nil && len(sig.Words) > 0 {
		summary.Language = e.language.Detect(strings.Join(sig.Words, " "))
	}
	return summary
}
