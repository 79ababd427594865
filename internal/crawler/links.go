package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/aicompliance/internal/model"
)

// skippedSchemes are href prefixes that never lead to a crawlable page.
var skippedSchemes = []string{"javascript:", "mailto:", "tel:", "data:", "ftp:", "file:"}

// LinkDiscoverer extracts crawlable links from fetched pages. Only links
// on an accepted origin are returned. The seed origin is always accepted.
type LinkDiscoverer struct {
	origins []*url.URL
	limit   int
}

// NewLinkDiscoverer creates a LinkDiscoverer for the origin of seed.
// limit caps the number of links taken from each page before the origin
// filter; 0 means no cap.
func NewLinkDiscoverer(seed *url.URL, limit int) *LinkDiscoverer {
	return &LinkDiscoverer{origins: []*url.URL{seed}, limit: limit}
}

// AddOrigin accepts the origin of u in addition to the seed origin. It
// reports whether the origin was new.
func (d *LinkDiscoverer) AddOrigin(u *url.URL) bool {
	if u == nil || d.Accepts(u) {
		return false
	}
	d.origins = append(d.origins, u)
	return true
}

// Accepts reports whether u is on an accepted origin.
func (d *LinkDiscoverer) Accepts(u *url.URL) bool {
	for _, origin := range d.origins {
		if SameOrigin(origin, u) {
			return true
		}
	}
	return false
}

// Discover returns the accepted links of page in document order.
// Fragments are removed and duplicates are dropped.
func (d *LinkDiscoverer) Discover(page *model.PageRecord) []string {
	if page == nil || page.Doc == nil {
		return nil
	}
	base, err := url.Parse(page.BaseURL())
	if err != nil {
		return nil
	}

	links := DiscoverLinks(page.Doc, base)
	if d.limit > 0 && len(links) > d.limit {
		links = links[:d.limit]
	}
	out := make([]string, 0, len(links))
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || !d.Accepts(u) {
			continue
		}
		out = append(out, link)
	}
	return out
}

// DiscoverLinks returns every http(s) link of doc resolved against base,
// normalized and deduplicated in first-seen order. A <base href> element
// overrides base.
func DiscoverLinks(doc *goquery.Document, base *url.URL) []string {
	if doc == nil || base == nil {
		return nil
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		normalized := NormalizeURL(resolved)
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})
	return links
}

func skipHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// NormalizeURL returns the canonical form of u used for deduplication:
// no fragment, lowercase scheme and host, no default port and "/" for an
// empty path. u is not modified.
func NormalizeURL(u *url.URL) string {
	n := *u
	n.Fragment = ""
	n.RawFragment = ""
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if port := n.Port(); (port == "80" && n.Scheme == "http") || (port == "443" && n.Scheme == "https") {
		n.Host = strings.TrimSuffix(n.Host, ":"+port)
	}
	if n.Path == "" {
		n.Path = "/"
		n.RawPath = ""
	}
	return n.String()
}

// NormalizeString is NormalizeURL for a raw string. Unparsable input is
// returned unchanged.
func NormalizeString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return NormalizeURL(u)
}

// SameOrigin reports whether a and b share scheme, host and port.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}

// EnsureScheme prepends https:// to input without a scheme.
func EnsureScheme(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.Contains(trimmed, "://") {
		return trimmed
	}
	return "https://" + trimmed
}

// ParseSeed validates a seed URL. It must be absolute with an http or
// https scheme and a host.
func ParseSeed(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &InputError{Input: raw, Err: ErrEmptySeed}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &InputError{Input: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &InputError{Input: raw, Err: ErrNotAbsolute}
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return nil, &InputError{Input: raw, Err: ErrUnsupportedScheme}
	}
	return u, nil
}
