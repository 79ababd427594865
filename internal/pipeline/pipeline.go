package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/aicompliance/internal/crawler"
	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/aicompliance/internal/scoring"
)

// Run carries the state of one site analysis through the steps.
type Run struct {
	// Website is the seed URL.
	Website string

	// MaxPages is the page budget of this run.
	MaxPages int

	// Crawl is filled by the crawl step.
	Crawl *crawler.CrawlResult

	// Evaluation is filled by the score step.
	Evaluation *scoring.Evaluation

	// Report is the aggregated result.
	Report *model.ComplianceReport

	// ReportID is the database ID once the report has been stored.
	ReportID int64

	// SavedPath is the JSON file written by the save step.
	SavedPath string

	// Warnings collects non-fatal problems, such as an empty crawl.
	Warnings []error

	// Steps lists the names of the steps that completed.
	Steps []string
}

// NewRun creates a Run for website.
func NewRun(website string, maxPages int) *Run {
	return &Run{Website: website, MaxPages: maxPages}
}

// Warn records a non-fatal problem.
func (r *Run) Warn(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the run state
// accumulated by the previous steps.
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the step fails critically; non-critical errors
	// should be recorded with Run.Warn and return nil.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The first error is still returned.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Discard()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence. Cancellation is checked
// before each step; steps handle their own timeouts.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	var firstErr error
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return errors.Join(firstErr, err)
		}

		p.logger.Debug("executing step", "step", step.Name(), "website", run.Website)
		start := time.Now()

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "website", run.Website, "error", err)
			if !p.continueOnError {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		p.logger.Debug("step completed", "step", step.Name(), "elapsed", time.Since(start))
		run.Steps = append(run.Steps, step.Name())
	}
	return firstErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
