package model

import (
	"encoding/hex"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/crypto/sha3"
)

// PageRecord is a single successfully fetched page.
// Records are created by the crawler's fetcher and are not modified afterwards;
// link discovery and every category scorer only read them.
type PageRecord struct {
	// URL is the absolute, normalized URL the page was fetched from.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. It is empty when the request
	// was not redirected. Relative links resolve against it.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP status of the response. Always 2xx.
	StatusCode int `json:"status_code"`

	// ElapsedMS is the wall-clock time of the request and body read in
	// milliseconds. Markup parsing is not included. Scorers use it as the
	// page speed approximation.
	ElapsedMS float64 `json:"elapsed_ms"`

	// HTML is the decoded (UTF-8) response body.
	HTML string `json:"-"`

	// Doc is the parsed document tree of HTML.
	Doc *goquery.Document `json:"-"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`

	// ContentHash is the hex SHA3-256 of HTML.
	// Pages served under different URLs with identical bodies share a hash.
	ContentHash string `json:"content_hash"`
}

// NewPageRecord builds a PageRecord and computes its content hash.
func NewPageRecord(pageURL string, status int, elapsed time.Duration, body string, doc *goquery.Document, fetchedAt time.Time) *PageRecord {
	return &PageRecord{
		URL:         pageURL,
		StatusCode:  status,
		ElapsedMS:   float64(elapsed.Microseconds()) / 1000.0,
		HTML:        body,
		Doc:         doc,
		FetchedAt:   fetchedAt,
		ContentHash: ContentHash(body),
	}
}

// BaseURL returns FinalURL when set and URL otherwise.
func (p *PageRecord) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// ContentHash returns the hex encoded SHA3-256 digest of body.
// Empty input produces an empty hash.
func ContentHash(body string) string {
	if body == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// PageSummary is the per-page part of a ComplianceReport.
type PageSummary struct {
	URL         string  `json:"url"`
	StatusCode  int     `json:"status_code"`
	ElapsedMS   float64 `json:"elapsed_ms"`
	Title       string  `json:"title,omitempty"`
	WordCount   int     `json:"word_count"`
	Language    string  `json:"language,omitempty"`
	ContentHash string  `json:"content_hash,omitempty"`
}

// CrawlStats counts what happened during one crawl.
type CrawlStats struct {
	// PagesAttempted is the number of fetches issued.
	PagesAttempted int `json:"pages_attempted"`

	// PagesSucceeded is the number of PageRecords produced.
	PagesSucceeded int `json:"pages_succeeded"`

	// PagesFailed is the number of fetch or parse failures.
	PagesFailed int `json:"pages_failed"`

	// DuplicateContent is the number of succeeded pages whose body hash
	// matched an earlier page of the same crawl.
	DuplicateContent int `json:"duplicate_content"`
}
