// Package crawler discovers and fetches the pages of a single website.
//
// # Components
//
//   - Fetcher: one GET per page with a timeout, charset decoding and a
//     body size limit. Failures are typed as *FetchError with a reason
//     (timeout, connection, http_status, other) or *ParseError.
//   - LinkDiscoverer: extracts same-origin links from a fetched page with
//     goquery. Fragments are removed and duplicates dropped.
//   - Spider: a breadth-first crawl bounded by a page budget. The seed is
//     fetched first and no URL is fetched twice.
//
// # Politeness
//
// The sequential crawl sleeps between fetches but not after the last one.
// With WithConcurrency(n) a bounded worker pool is used instead and a
// shared rate limiter keeps requests to the host at least the delay apart.
//
// # Failures
//
// A page that cannot be fetched is counted in CrawlStats.PagesFailed and
// skipped. A crawl that produced no page at all returns ErrZeroPages
// together with a valid result.
//
// # Usage
//
//	spider := crawler.NewSpider(crawler.NewFetcher(), crawler.WithMaxPages(5))
//	result, err := spider.Crawl(ctx, "https://example.com")
package crawler
