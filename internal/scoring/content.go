package scoring

import (
	"fmt"

	"github.com/nao1215/aicompliance/internal/model"
)

// Keyword density bounds.
const (
	KeywordDensityLow  = 0.005
	KeywordDensityHigh = 0.03
	KeywordDensityMax  = 0.05
)

// NewContentScorer scores content depth, heading structure, paragraph
// count and keyword density. Targets come from th.
func NewContentScorer(th Thresholds) *RuleScorer {
	th = th.withDefaults()
	words := float64(th.MinWordCount)
	headings := float64(th.MinHeadings)

	return NewRuleScorer(model.CategoryContent, []Rule{
		{
			Label:   "Content depth",
			Measure: (*Site).AvgWords,
			Bands: []Band{
				AtLeast(words, 25),
				AtLeast(words*0.5, 20),
				AtLeast(words*0.3, 15),
			},
			Else:   10,
			Format: formatCount("words"),
		},
		{
			Label:   "Heading structure",
			Measure: (*Site).AvgHeadings,
			Bands: []Band{
				AtLeast(headings, 20),
				AtLeast(headings*0.6, 15),
			},
			Else:   10,
			Format: formatCount("headings"),
		},
		{
			Label:   "Readability",
			Measure: (*Site).AvgParagraphs,
			Bands:   []Band{AtLeast(float64(th.MinParagraphs), 15)},
			Else:    10,
			Format:  formatCount("paragraphs"),
		},
		{
			Label:   "Keyword optimization",
			Measure: func(s *Site) float64 { return s.Keyword.Density() },
			Bands: []Band{
				Within(KeywordDensityLow, KeywordDensityHigh, 20),
				Within(0, KeywordDensityMax, 10),
			},
			Else: 0,
			Format: func(v float64) string {
				if v < 0 {
					return "no words"
				}
				return fmt.Sprintf("%.1f%% density", v*100)
			},
		},
	})
}
