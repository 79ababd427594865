package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvMaxPages      = "MAX_PAGES"
	EnvCrawlDelay    = "CRAWL_DELAY"
	EnvTimeout       = "TIMEOUT"
	EnvMinWordCount  = "MIN_WORD_COUNT"
	EnvMinHeadings   = "MIN_HEADINGS"
	EnvMinParagraphs = "MIN_PARAGRAPHS"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides crawl limits and content thresholds from the process
// environment. Unset or empty variables keep the current value.
func (c *Config) ApplyEnv() error {
	return c.ApplyEnvFrom(os.LookupEnv)
}

// ApplyEnvFrom is ApplyEnv with an explicit lookup function.
func (c *Config) ApplyEnvFrom(lookup LookupFunc) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMaxPages, &c.MaxPages},
		{EnvMinWordCount, &c.MinWordCount},
		{EnvMinHeadings, &c.MinHeadings},
		{EnvMinParagraphs, &c.MinParagraphs},
	}
	for _, v := range ints {
		raw, ok := lookupNonEmpty(lookup, v.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w %s=%q: %w", ErrInvalidEnv, v.name, raw, err)
		}
		*v.dst = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{EnvCrawlDelay, &c.CrawlDelay},
		{EnvTimeout, &c.Timeout},
	}
	for _, v := range durations {
		raw, ok := lookupNonEmpty(lookup, v.name)
		if !ok {
			continue
		}
		d, err := ParseSeconds(raw)
		if err != nil {
			return fmt.Errorf("%w %s=%q: %w", ErrInvalidEnv, v.name, raw, err)
		}
		*v.dst = d
	}
	return nil
}

// ParseSeconds parses a duration given either as a plain number of seconds
// ("1", "0.5") or as a Go duration string ("1500ms", "2s").
func ParseSeconds(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

func lookupNonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
