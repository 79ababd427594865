package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
)

// Default crawl settings.
const (
	DefaultMaxPages = 5
	DefaultDelay    = time.Second
)

// CrawlResult is the outcome of one crawl.
type CrawlResult struct {
	// Pages holds the fetched pages. In sequential mode the order is BFS
	// order starting with the seed; in concurrent mode it is completion
	// order.
	Pages []*model.PageRecord

	Stats model.CrawlStats
}

// Spider performs a bounded breadth-first crawl of a single website.
// A Spider holds configuration only; each Crawl call owns its own
// frontier, so a Spider may be reused and shared.
type Spider struct {
	fetcher        PageFetcher
	maxPages       int
	delay          time.Duration
	concurrency    int
	linksPerPage   int
	ignorePatterns []string
	followPatterns []string
	logger         *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the page budget. Values below 1 are ignored.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithDelay sets the politeness delay between fetches.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithConcurrency sets the number of fetch workers. 1 is sequential.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLinksPerPage caps how many discovered links of each page are
// followed. 0 follows all of them.
func WithLinksPerPage(n int) SpiderOption {
	return func(s *Spider) {
		if n >= 0 {
			s.linksPerPage = n
		}
	}
}

// WithIgnorePatterns sets URL path glob patterns that are never crawled.
// Patterns use glob syntax such as "/admin/*" or "*.pdf".
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns restricts the crawl to URL paths matching at least
// one pattern. An empty list allows every path.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that fetches through fetcher.
func NewSpider(fetcher PageFetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		maxPages:    DefaultMaxPages,
		delay:       DefaultDelay,
		concurrency: 1,
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxPages returns the page budget.
func (s *Spider) MaxPages() int {
	return s.maxPages
}

// Crawl fetches pages reachable from seed. The seed is always fetched
// first, no URL is fetched twice and at most MaxPages pages are returned.
//
// Per-page failures are counted and skipped. When nothing could be
// fetched the result is returned together with ErrZeroPages. A cancelled
// ctx stops the crawl and returns the pages gathered so far with
// ctx.Err().
func (s *Spider) Crawl(ctx context.Context, seed string) (*CrawlResult, error) {
	seedURL, err := ParseSeed(seed)
	if err != nil {
		return nil, err
	}

	var result *CrawlResult
	if s.concurrency > 1 {
		result, err = s.crawlConcurrent(ctx, seedURL)
	} else {
		result, err = s.crawlSequential(ctx, seedURL)
	}
	if err != nil {
		return result, err
	}
	if len(result.Pages) == 0 {
		return result, ErrZeroPages
	}
	return result, nil
}

func (s *Spider) crawlSequential(ctx context.Context, seedURL *url.URL) (*CrawlResult, error) {
	links := NewLinkDiscoverer(seedURL, s.linksPerPage)
	seedKey := NormalizeURL(seedURL)
	front := newFrontier(seedKey)
	result := &CrawlResult{}
	hashes := make(map[string]bool)

	for front.Len() > 0 && len(result.Pages) < s.maxPages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageURL, _ := front.Pop()
		result.Stats.PagesAttempted++
		page, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Stats.PagesFailed++
			s.logFailure(pageURL, err)
		} else {
			s.record(result, hashes, page)
			s.adoptRedirect(links, front, seedKey, pageURL, page)
			if len(result.Pages) < s.maxPages {
				for _, link := range links.Discover(page) {
					if s.shouldCrawl(link) {
						front.Push(link)
					}
				}
			}
		}

		if front.Len() == 0 || len(result.Pages) >= s.maxPages {
			break
		}
		if err := sleepContext(ctx, s.delay); err != nil {
			return result, err
		}
	}
	return result, nil
}

// crawlConcurrent runs the crawl on a bounded pool. A worker reserves a
// budget slot before fetching, so pages plus in-flight fetches never
// exceed maxPages. A shared limiter spaces requests to the host by the
// politeness delay.
func (s *Spider) crawlConcurrent(ctx context.Context, seedURL *url.URL) (*CrawlResult, error) {
	links := NewLinkDiscoverer(seedURL, s.linksPerPage)
	seedKey := NormalizeURL(seedURL)
	front := newFrontier(seedKey)
	result := &CrawlResult{}
	hashes := make(map[string]bool)

	limit := rate.Inf
	if s.delay > 0 {
		limit = rate.Every(s.delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	inflight := 0

	stop := context.AfterFunc(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		cond.Broadcast()
	})
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	mu.Lock()
	for {
		for front.Len() == 0 && inflight > 0 && ctx.Err() == nil {
			cond.Wait()
		}
		if ctx.Err() != nil || front.Len() == 0 || len(result.Pages)+inflight >= s.maxPages {
			if inflight == 0 || ctx.Err() != nil {
				break
			}
			cond.Wait()
			continue
		}

		pageURL, _ := front.Pop()
		inflight++
		result.Stats.PagesAttempted++
		mu.Unlock()

		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				mu.Lock()
				inflight--
				cond.Broadcast()
				mu.Unlock()
				return nil
			}
			page, err := s.fetcher.Fetch(gctx, pageURL)

			mu.Lock()
			defer mu.Unlock()
			defer cond.Broadcast()
			inflight--
			if err != nil {
				if gctx.Err() == nil {
					result.Stats.PagesFailed++
					s.logFailure(pageURL, err)
				}
				return nil
			}
			s.record(result, hashes, page)
			s.adoptRedirect(links, front, seedKey, pageURL, page)
			if len(result.Pages) < s.maxPages {
				for _, link := range links.Discover(page) {
					if s.shouldCrawl(link) {
						front.Push(link)
					}
				}
			}
			return nil
		})

		mu.Lock()
	}
	mu.Unlock()

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// record appends page to result and counts duplicate bodies.
// Callers in concurrent mode hold the lock.
func (s *Spider) record(result *CrawlResult, hashes map[string]bool, page *model.PageRecord) {
	result.Pages = append(result.Pages, page)
	result.Stats.PagesSucceeded++
	s.logger.Debug("fetched page", "url", page.URL, "status", page.StatusCode, "elapsed_ms", page.ElapsedMS)
	if page.ContentHash == "" {
		return
	}
	if hashes[page.ContentHash] {
		result.Stats.DuplicateContent++
		s.logger.Debug("duplicate content", "url", page.URL, "content_hash", page.ContentHash)
		return
	}
	hashes[page.ContentHash] = true
}

func (s *Spider) logFailure(pageURL string, err error) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		s.logger.Debug("fetch failed", "url", pageURL, "reason", string(fetchErr.Reason), "status", fetchErr.StatusCode, "error", err)
		return
	}
	s.logger.Debug("page skipped", "url", pageURL, "error", err)
}

// adoptRedirect accepts the origin the seed redirected to, so that links
// of the redirected site are followed. The final URL is marked as seen.
func (s *Spider) adoptRedirect(links *LinkDiscoverer, front *frontier, seedKey, pageURL string, page *model.PageRecord) {
	if pageURL != seedKey || page.FinalURL == "" {
		return
	}
	final, err := url.Parse(page.FinalURL)
	if err != nil || final.Host == "" {
		return
	}
	front.MarkSeen(NormalizeURL(final))
	if links.AddOrigin(final) {
		s.logger.Debug("seed redirected to another origin", "seed", seedKey, "final_url", page.FinalURL)
	}
}

// shouldCrawl applies the ignore and follow patterns to the path of
// targetURL. Ignore patterns win over follow patterns.
func (s *Spider) shouldCrawl(targetURL string) bool {
	if len(s.ignorePatterns) == 0 && len(s.followPatterns) == 0 {
		return true
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, p) {
			return false
		}
	}
	if len(s.followPatterns) == 0 {
		return true
	}
	for _, pattern := range s.followPatterns {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern reports whether urlPath matches a glob pattern.
//
//   - "/blog/*" matches "/blog" and everything below it
//   - "*.pdf" matches any path ending in .pdf
//   - other patterns use path.Match, and patterns without a slash are
//     also tried against the last path segment
func matchPattern(pattern, urlPath string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") && !strings.ContainsAny(ext, "*?[") {
		if strings.HasSuffix(urlPath, ext) {
			return true
		}
	}
	if matched, err := path.Match(pattern, urlPath); err == nil && matched {
		return true
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(urlPath)); err == nil && matched {
			return true
		}
	}
	return false
}
