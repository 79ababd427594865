package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/aicompliance/internal/model"
)

// Default fetcher settings.
const (
	DefaultUserAgent    = "AICompliance/1.0 (+https://github.com/nao1215/aicompliance)"
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodySize  = 5 * 1024 * 1024
	DefaultRetryBackoff = 500 * time.Millisecond

	// MaxRedirects is the number of redirects followed per request.
	MaxRedirects = 10
)

// PageFetcher fetches a single page. Fetcher is the production
// implementation; tests substitute their own.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.PageRecord, error)
}

// Fetcher performs one HTTP GET per page and turns the response into a
// PageRecord.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	maxBodySize  int64
	headers      map[string]string
	cookie       string
	retries      int
	retryBackoff time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client. The client's own Timeout is left
// alone; the fetcher applies its timeout per request through the context.
// A client without a redirect policy gets one that stops with
// ErrTooManyRedirects.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout. It covers connecting, the
// response headers and reading the body.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize limits how many body bytes are read.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithRetries sets how many extra attempts are made after a timeout or
// connection failure. HTTP status failures are never retried.
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithRetryBackoff sets the base wait between attempts. Attempt n waits
// n times the base.
func WithRetryBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d >= 0 {
			f.retryBackoff = d
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{},
		userAgent:    DefaultUserAgent,
		timeout:      DefaultTimeout,
		maxBodySize:  DefaultMaxBodySize,
		retryBackoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client.CheckRedirect == nil {
		client := *f.client
		client.CheckRedirect = limitRedirects
		f.client = &client
	}
	return f
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, MaxRedirects)
	}
	return nil
}

// Fetch retrieves pageURL. Failures are *FetchError or *ParseError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.PageRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*f.retryBackoff); err != nil {
				return nil, &FetchError{URL: pageURL, Reason: ReasonOther, Err: err}
			}
		}

		page, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		fe, ok := err.(*FetchError)
		if !ok || !fe.Retryable() || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*model.PageRecord, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Reason: ReasonOther, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Reason: classifyError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			URL:        pageURL,
			Reason:     ReasonHTTPStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return nil, &ParseError{URL: pageURL, Err: fmt.Errorf("not an HTML document: %s", contentType)}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Reason: classifyError(err), Err: err}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Reason: classifyError(err), Err: err}
	}
	elapsed := time.Since(start)
	fetchedAt := time.Now()

	html := string(body)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	page := model.NewPageRecord(pageURL, resp.StatusCode, elapsed, html, doc, fetchedAt)
	if final := resp.Request.URL.String(); final != pageURL {
		page.FinalURL = final
	}
	return page, nil
}

// isHTMLContentType accepts HTML, XHTML and a missing Content-Type.
func isHTMLContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
