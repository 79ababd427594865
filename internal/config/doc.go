// Package config holds the options of an analysis run: crawl limits,
// content thresholds, output settings and per-site overrides.
//
// Values are layered: defaults from NewConfig, then the YAML config file,
// then the MAX_PAGES, CRAWL_DELAY, TIMEOUT, MIN_WORD_COUNT, MIN_HEADINGS and
// MIN_PARAGRAPHS environment variables, then explicit CLI flags.
package config
