package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of sites analyzed at once.
const DefaultBatchConcurrency = 2

// AnalyzeFunc analyzes one site. Analyzer.Analyze bound to a page budget
// satisfies it.
type AnalyzeFunc func(ctx context.Context, website string) (*model.ComplianceReport, error)

// Result is the outcome of one site in a batch.
type Result struct {
	Website string
	Report  *model.ComplianceReport
	Err     error
}

// BatchProcessor analyzes several sites concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	analyze AnalyzeFunc

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor calling analyze per site.
func NewBatchProcessor(analyze AnalyzeFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyze:     analyze,
		concurrency: DefaultBatchConcurrency,
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(bp)
	}
	return bp
}

// ProcessBatch analyzes every site. Results keep the order of sites.
// A failing site does not stop the others; its error is kept in the
// Result. The returned error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sites []string) ([]Result, error) {
	results := make([]Result, len(sites))
	err := bp.ProcessBatchWithCallback(ctx, sites, func(r Result, index int) {
		results[index] = r
	})
	return results, err
}

// ProcessBatchWithCallback analyzes every site and calls callback as soon
// as a site completes. callback runs on the worker goroutine and receives
// the index of the site in sites.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, sites []string, callback func(r Result, index int)) error {
	bp.logger.Info("starting batch processing",
		"total_sites", len(sites),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, site := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				callback(Result{Website: site, Err: err}, i)
				return err
			}

			bp.logger.Info("analyzing site", "website", site, "index", i+1, "total", len(sites))
			rep, err := bp.analyze(gctx, site)
			if err != nil {
				bp.logger.Warn("analysis failed", "website", site, "error", err)
			}
			callback(Result{Website: site, Report: rep, Err: err}, i)

			// Only cancellation aborts the batch.
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_sites", len(sites),
		"elapsed", time.Since(start),
	)
	return err
}
