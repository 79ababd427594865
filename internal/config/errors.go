package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoTarget is returned when no URL to analyze was given.
	ErrNoTarget = errors.New("no target specified: provide at least one website URL")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidThreshold is returned when a content threshold is not positive.
	ErrInvalidThreshold = errors.New("invalid content threshold: word, heading and paragraph minimums must be positive")

	// ErrInvalidConcurrency is returned when the worker count is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidLinksPerPage is returned when the per-page link cap is negative.
	ErrInvalidLinksPerPage = errors.New("invalid links per page: must be non-negative")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownFormat is returned for an unsupported report format.
	ErrUnknownFormat = errors.New("unknown report format: use text, json, markdown or xlsx")

	// ErrXLSXNeedsFile is returned when xlsx output is requested for stdout.
	ErrXLSXNeedsFile = errors.New("xlsx format requires an output file (--output)")

	// ErrUnknownLogFormat is returned for an unsupported log format.
	ErrUnknownLogFormat = errors.New("unknown log format: use text or json")

	// ErrInvalidEnv is returned when an environment variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
