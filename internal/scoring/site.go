package scoring

import (
	"net/url"
	"strings"
)

// Default thresholds.
const (
	DefaultMinWordCount  = 1000
	DefaultMinHeadings   = 5
	DefaultMinParagraphs = 5

	// FastResponseMS and AcceptableResponseMS bound the response time
	// approximation of page speed.
	FastResponseMS       = 1000.0
	AcceptableResponseMS = 2000.0
)

// Thresholds are the configurable content targets.
type Thresholds struct {
	MinWordCount  int
	MinHeadings   int
	MinParagraphs int
}

// DefaultThresholds returns the default content targets.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWordCount:  DefaultMinWordCount,
		MinHeadings:   DefaultMinHeadings,
		MinParagraphs: DefaultMinParagraphs,
	}
}

// withDefaults replaces non-positive values with the defaults.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.MinWordCount <= 0 {
		t.MinWordCount = d.MinWordCount
	}
	if t.MinHeadings <= 0 {
		t.MinHeadings = d.MinHeadings
	}
	if t.MinParagraphs <= 0 {
		t.MinParagraphs = d.MinParagraphs
	}
	return t
}

// Site is the page set as seen by the category scorers.
type Site struct {
	// Website is the seed URL.
	Website string

	// Pages holds the signals of every page in crawl order. The first
	// page is the seed page when the seed could be fetched.
	Pages []*PageSignals

	Keyword KeywordStat
}

// NewSite builds a Site.
func NewSite(website string, pages []*PageSignals) *Site {
	return &Site{
		Website: website,
		Pages:   pages,
		Keyword: TopKeyword(pages),
	}
}

// Empty reports whether no page was analyzed.
func (s *Site) Empty() bool {
	return len(s.Pages) == 0
}

// HTTPS reports whether the website is served over TLS.
func (s *Site) HTTPS() bool {
	u, err := url.Parse(s.Website)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https")
}

// Seed returns the signals of the first page, or nil.
func (s *Site) Seed() *PageSignals {
	if len(s.Pages) == 0 {
		return nil
	}
	return s.Pages[0]
}

// AvgResponseMS returns the mean response time.
func (s *Site) AvgResponseMS() float64 {
	return Average(s.Pages, func(p *PageSignals) float64 { return p.ElapsedMS })
}

// AvgWords returns the mean visible word count.
func (s *Site) AvgWords() float64 {
	return Average(s.Pages, func(p *PageSignals) float64 { return float64(p.WordCount()) })
}

// AvgHeadings returns the mean number of h1-h6 elements.
func (s *Site) AvgHeadings() float64 {
	return Average(s.Pages, func(p *PageSignals) float64 { return float64(p.Headings) })
}

// AvgParagraphs returns the mean number of p elements.
func (s *Site) AvgParagraphs() float64 {
	return Average(s.Pages, func(p *PageSignals) float64 { return float64(p.Paragraphs) })
}

// Fraction returns the share of pages for which pred holds.
func (s *Site) Fraction(pred func(*PageSignals) bool) float64 {
	return FractionMatching(s.Pages, pred)
}
