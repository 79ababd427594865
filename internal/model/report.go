package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ComplianceReport is the result of one analysis run.
// It is built once by the scoring aggregator and not modified afterwards.
type ComplianceReport struct {
	// Website is the seed URL the crawl started from.
	Website string

	// PagesAnalyzed is the number of PageRecords that were scored.
	PagesAnalyzed int

	// Categories holds one result per category in CategoryOrder.
	Categories []CategoryResult

	// TotalScore is the sum of the category scores.
	TotalScore float64

	// MaxScore is the constant sum of the category maxima.
	MaxScore int

	// Percentage is TotalScore/MaxScore*100 clamped to [0,100].
	Percentage float64

	// Tier is derived from Percentage rounded to one decimal, the value
	// the report shows.
	Tier Tier

	// Recommendation is the verdict sentence of Tier.
	Recommendation string

	// PriorityActions lists at most five improvement actions.
	PriorityActions []string

	// GeneratedAt is when the report was aggregated.
	GeneratedAt time.Time

	// CrawlStats summarizes the crawl that produced the pages.
	CrawlStats CrawlStats

	// Pages summarizes every analyzed page.
	Pages []PageSummary
}

// Category returns the result for key, if present.
func (r *ComplianceReport) Category(key CategoryKey) (CategoryResult, bool) {
	for _, c := range r.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryResult{}, false
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// reportDocument is the persisted JSON shape of a ComplianceReport.
type reportDocument struct {
	Website         string          `json:"website"`
	Timestamp       time.Time       `json:"timestamp"`
	OverallScore    float64         `json:"overall_score"`
	MaxScore        int             `json:"max_score"`
	Percentage      float64         `json:"percentage"`
	ComplianceLevel Tier            `json:"compliance_level"`
	ComplianceLabel string          `json:"compliance_label"`
	Recommendation  string          `json:"recommendation"`
	CategoryScores  categoryScores  `json:"category_scores"`
	PriorityActions []string        `json:"priority_actions"`
	PagesAnalyzed   int             `json:"pages_analyzed"`
	Details         categoryDetails `json:"details"`
	CrawlStats      CrawlStats      `json:"crawl_stats"`
	Pages           []PageSummary   `json:"pages"`
}

// CategoryScore is the summary entry of one category in category_scores.
type CategoryScore struct {
	Score      float64 `json:"score"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
}

type categoryScoreEntry struct {
	key   CategoryKey
	score CategoryScore
}

// categoryScores keeps category order when encoded as a JSON object.
type categoryScores []categoryScoreEntry

type categoryDetailEntry struct {
	key    CategoryKey
	checks []Check
}

// categoryDetails keeps category order when encoded as a JSON object.
type categoryDetails []categoryDetailEntry

// MarshalJSON encodes the report in its persisted form.
func (r *ComplianceReport) MarshalJSON() ([]byte, error) {
	doc := reportDocument{
		Website:         r.Website,
		Timestamp:       r.GeneratedAt,
		OverallScore:    Round1(r.TotalScore),
		MaxScore:        r.MaxScore,
		Percentage:      Round1(r.Percentage),
		ComplianceLevel: r.Tier,
		ComplianceLabel: r.Tier.Label(),
		Recommendation:  r.Recommendation,
		CategoryScores:  make(categoryScores, 0, len(r.Categories)),
		PriorityActions: r.PriorityActions,
		PagesAnalyzed:   r.PagesAnalyzed,
		Details:         make(categoryDetails, 0, len(r.Categories)),
		CrawlStats:      r.CrawlStats,
		Pages:           r.Pages,
	}
	if doc.PriorityActions == nil {
		doc.PriorityActions = []string{}
	}
	if doc.Pages == nil {
		doc.Pages = []PageSummary{}
	}
	for _, c := range r.Categories {
		doc.CategoryScores = append(doc.CategoryScores, categoryScoreEntry{
			key: c.Key,
			score: CategoryScore{
				Score:      Round1(c.Score),
				Max:        c.Max,
				Percentage: Round1(c.Percentage()),
			},
		})
		checks := c.Checks
		if checks == nil {
			checks = []Check{}
		}
		doc.Details = append(doc.Details, categoryDetailEntry{key: c.Key, checks: checks})
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a persisted report.
func (r *ComplianceReport) UnmarshalJSON(data []byte) error {
	var doc reportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	checks := make(map[CategoryKey][]Check, len(doc.Details))
	for _, d := range doc.Details {
		checks[d.key] = d.checks
	}

	*r = ComplianceReport{
		Website:         doc.Website,
		PagesAnalyzed:   doc.PagesAnalyzed,
		Categories:      make([]CategoryResult, 0, len(doc.CategoryScores)),
		TotalScore:      doc.OverallScore,
		MaxScore:        doc.MaxScore,
		Percentage:      doc.Percentage,
		Tier:            doc.ComplianceLevel,
		Recommendation:  doc.Recommendation,
		PriorityActions: doc.PriorityActions,
		GeneratedAt:     doc.Timestamp,
		CrawlStats:      doc.CrawlStats,
		Pages:           doc.Pages,
	}
	for _, e := range doc.CategoryScores {
		r.Categories = append(r.Categories, CategoryResult{
			Key:    e.key,
			Name:   e.key.Info().Name,
			Score:  e.score.Score,
			Max:    e.score.Max,
			Checks: checks[e.key],
		})
	}
	return nil
}

// MarshalJSON encodes the entries as an object in slice order.
func (s categoryScores) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(s), func(i int) (string, any) {
		return string(s[i].key), s[i].score
	})
}

// UnmarshalJSON decodes an object and keeps its key order.
func (s *categoryScores) UnmarshalJSON(data []byte) error {
	*s = (*s)[:0]
	return unmarshalOrdered(data, func(key string, raw json.RawMessage) error {
		var score CategoryScore
		if err := json.Unmarshal(raw, &score); err != nil {
			return err
		}
		*s = append(*s, categoryScoreEntry{key: CategoryKey(key), score: score})
		return nil
	})
}

// MarshalJSON encodes the entries as an object in slice order.
func (d categoryDetails) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(d), func(i int) (string, any) {
		return string(d[i].key), d[i].checks
	})
}

// UnmarshalJSON decodes an object and keeps its key order.
func (d *categoryDetails) UnmarshalJSON(data []byte) error {
	*d = (*d)[:0]
	return unmarshalOrdered(data, func(key string, raw json.RawMessage) error {
		var checks []Check
		if err := json.Unmarshal(raw, &checks); err != nil {
			return err
		}
		*d = append(*d, categoryDetailEntry{key: CategoryKey(key), checks: checks})
		return nil
	})
}

func marshalOrdered(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, value := entry(i)
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func unmarshalOrdered(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}
