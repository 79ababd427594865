package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxPages is the page budget of one crawl.
	// The analysis is a shallow sample of a site, not a site map.
	DefaultMaxPages = 5

	// DefaultCrawlDelay is the politeness pause between two fetches.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultTimeout bounds a single HTTP request including the body read.
	DefaultTimeout = 10 * time.Second

	// DefaultMinWordCount is the average word count per page that earns
	// full content depth points.
	DefaultMinWordCount = 1000

	// DefaultMinHeadings is the average heading count per page that earns
	// full heading structure points.
	DefaultMinHeadings = 5

	// DefaultMinParagraphs is the average paragraph count per page that earns
	// full readability points.
	DefaultMinParagraphs = 5

	// DefaultConcurrency of 1 keeps the crawl strictly sequential.
	DefaultConcurrency = 1

	// DefaultBatchSize is the number of sites analyzed in parallel when
	// several URLs are given.
	DefaultBatchSize = 2

	// AppName is the application name used for XDG directory paths.
	AppName = "aicompliance"

	// DefaultUserAgent identifies the analyzer in HTTP requests.
	DefaultUserAgent = "AICompliance/1.0 (+https://github.com/nao1215/aicompliance)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultFormat is the report format written to stdout.
	DefaultFormat = FormatText
)

// Report formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatXLSX     = "xlsx"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all options of an analysis run.
// It is built from defaults, the config file, environment variables and
// CLI flags, in that order, and then passed down explicitly.
type Config struct {
	// Targets are the seed URLs to analyze.
	Targets []string

	// MaxPages is the maximum number of pages fetched per site.
	MaxPages int

	// CrawlDelay is the pause between two fetches to the same host.
	CrawlDelay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MinWordCount, MinHeadings and MinParagraphs are the content quality
	// thresholds for full points.
	MinWordCount  int
	MinHeadings   int
	MinParagraphs int

	// Concurrency is the number of crawl workers per site.
	// 1 means sequential crawling.
	Concurrency int

	// LinksPerPage caps the number of links followed from each page.
	// 0 means no cap.
	LinksPerPage int

	// Retries is the number of extra attempts for timeouts and connection
	// failures. 0 disables retrying.
	Retries int

	// BatchSize is the number of sites analyzed at the same time.
	BatchSize int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum number of body bytes read per page.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string

	// Format is the report format: text, json, markdown or xlsx.
	Format string

	// ReportFile is the output path. Empty means stdout.
	ReportFile string

	// SaveDir, when set, receives a timestamped JSON report per site.
	SaveDir string

	// DBDir is the directory of the report history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores every report in the history database.
	SaveToDB bool

	// ConfigFilePath is an explicit config file path.
	// Empty means search the current and the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site settings from the config file.
	SiteConfigs *File
}

// NewConfig creates a Config populated with default values.
func NewConfig() *Config {
	return &Config{
		MaxPages:      DefaultMaxPages,
		CrawlDelay:    DefaultCrawlDelay,
		Timeout:       DefaultTimeout,
		MinWordCount:  DefaultMinWordCount,
		MinHeadings:   DefaultMinHeadings,
		MinParagraphs: DefaultMinParagraphs,
		Concurrency:   DefaultConcurrency,
		BatchSize:     DefaultBatchSize,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		LogFormat:     LogFormatText,
		Format:        DefaultFormat,
		DBDir:         XDGDataDir(),
		SaveToDB:      true,
	}
}

// XDGDataDir returns the XDG data directory of the application.
// On Linux: ~/.local/share/aicompliance
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory of the application.
// On Linux: ~/.config/aicompliance
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MinWordCount <= 0 || c.MinHeadings <= 0 || c.MinParagraphs <= 0 {
		return ErrInvalidThreshold
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.LinksPerPage < 0 {
		return ErrInvalidLinksPerPage
	}
	if c.Retries < 0 {
		return ErrInvalidRetries
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	case FormatXLSX:
		// A spreadsheet is binary, it needs a file.
		if c.ReportFile == "" {
			return ErrXLSXNeedsFile
		}
	default:
		return ErrUnknownFormat
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return ErrUnknownLogFormat
	}
	return nil
}
