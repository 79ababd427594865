package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/nao1215/aicompliance/internal/crawler"
	"github.com/nao1215/aicompliance/internal/database"
	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/aicompliance/internal/pipeline"
	"github.com/nao1215/aicompliance/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze URL [URL...]",
		Short: "Crawl a website and score its AI compliance",
		Long: `Analyze fetches up to --max-pages pages of each website, starting at the
given URL and following same-origin links breadth first, and scores the pages.

A URL without a scheme is fetched over https.

Examples:
  # Analyze a single site
  aicompliance analyze example.com

  # Analyze more pages with a shorter delay
  aicompliance analyze -n 10 -d 0.5 https://example.com

  # Write a Markdown report
  aicompliance analyze -f markdown -o report.md example.com

  # Analyze several sites, two at a time, and keep JSON copies
  aicompliance analyze --batch 2 --save reports example.com example.org`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().IntP("max-pages", "n", config.DefaultMaxPages,
		"Maximum number of pages fetched per site")
	cmd.Flags().StringP("delay", "d", config.DefaultCrawlDelay.String(),
		"Pause between requests, in seconds or as a duration (e.g. 1, 0.5, 1500ms)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of a single request")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Crawl workers per site (1 crawls sequentially)")
	cmd.Flags().Int("links-per-page", 0,
		"Links followed from each page (0 follows all)")
	cmd.Flags().Int("retries", 0,
		"Extra attempts after timeouts and connection failures")

	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Report format: text, json, markdown or xlsx")
	cmd.Flags().String("save", "",
		"Directory receiving a timestamped JSON report per site")
	cmd.Flags().Bool("no-db", false,
		"Do not store the report in the history database")
	cmd.Flags().Int("batch", config.DefaultBatchSize,
		"Number of sites analyzed at the same time")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	_ = cmd.Flags().MarkHidden("db-dir") //nolint:errcheck // flag exists

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)
	return runAnalyze(cmd.Context(), cmd, cfg, logger)
}

// buildConfig merges defaults, the config file, the environment and the
// flags that were explicitly set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if _, err := cfg.Load(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		raw, err := flags.GetString("delay")
		if err != nil {
			return nil, err
		}
		if cfg.CrawlDelay, err = config.ParseSeconds(raw); err != nil {
			return nil, fmt.Errorf("invalid --delay %q: %w", raw, err)
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("links-per-page") {
		if cfg.LinksPerPage, err = flags.GetInt("links-per-page"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retries") {
		if cfg.Retries, err = flags.GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("save") {
		if cfg.SaveDir, err = flags.GetString("save"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.Verbose = getVerboseFlag(cmd)
	if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
		return nil, err
	}

	cfg.Targets = make([]string, 0, len(args))
	for _, arg := range args {
		cfg.Targets = append(cfg.Targets, crawler.EnsureScheme(arg))
	}
	return cfg, nil
}

// runAnalyze analyzes every target and writes the reports.
func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	opts := []pipeline.AnalyzerOption{pipeline.WithAnalyzerLogger(logger)}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.Options{
			CreateIfNotExists: true,
			EnableWAL:         true,
			Logger:            logger,
		})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, pipeline.WithStore(db))
	}
	analyzer := pipeline.NewAnalyzer(cfg, opts...)

	// An explicit --max-pages beats per-site budgets from the config file.
	maxPages := 0
	if cmd.Flags().Changed("max-pages") {
		maxPages = cfg.MaxPages
	}

	bp := pipeline.NewBatchProcessor(
		func(ctx context.Context, website string) (*model.ComplianceReport, error) {
			return analyzer.Analyze(ctx, website, maxPages)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	results, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	var failures []error
	multi := len(cfg.Targets) > 1
	for _, r := range results {
		switch {
		case errors.Is(r.Err, crawler.ErrZeroPages):
			logger.Warn("no page could be fetched; reporting zero scores", "website", r.Website)
		case r.Err != nil:
			failures = append(failures, fmt.Errorf("%s: %w", r.Website, r.Err))
			continue
		}
		if err := outputReport(cmd.OutOrStdout(), cfg, r.Report, multi); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", r.Website, err))
			continue
		}
		if cfg.SaveDir != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n",
				filepath.Join(cfg.SaveDir, report.FileName(r.Report)))
		}
	}
	return errors.Join(failures...)
}

// outputReport writes rep in the configured format to stdout or the
// report file. With several sites every site gets its own file.
func outputReport(stdout io.Writer, cfg *config.Config, rep *model.ComplianceReport, multi bool) error {
	output := stdout
	if cfg.ReportFile != "" {
		path := cfg.ReportFile
		if multi {
			path = perSitePath(path, rep.Website)
		}
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.New(cfg.Format, output)
	if err != nil {
		return err
	}
	_, err = w.Write(rep)
	return err
}

// perSitePath inserts the host of website before the extension of path.
func perSitePath(path, website string) string {
	ext := filepath.Ext(path)
	host := strings.ReplaceAll(database.HostOf(website), ":", "_")
	return strings.TrimSuffix(path, ext) + "-" + host + ext
}
