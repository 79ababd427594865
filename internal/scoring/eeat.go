package scoring

import "github.com/nao1215/aicompliance/internal/model"

// NewEEATScorer scores authorship, trust and freshness signals.
func NewEEATScorer() *RuleScorer {
	return NewRuleScorer(model.CategoryEEAT, []Rule{
		{
			Label:   "Author information",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.HasAuthor }) },
			Bands: []Band{
				AtLeast(0.5, 7),
				Above(0, 4),
			},
			Format: formatPercent,
		},
		{
			Label:   "Credibility signals",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.HasTrustSignals }) },
			Bands: []Band{
				AtLeast(0.3, 8),
				Above(0, 5),
			},
			Format: formatPercent,
		},
		{
			Label:   "Content freshness",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.HasFreshnessDates }) },
			Bands: []Band{
				AtLeast(0.5, 5),
				Above(0, 3),
			},
			Format: formatPercent,
		},
	})
}
