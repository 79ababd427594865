package scoring

import "github.com/nao1215/aicompliance/internal/model"

// NewTechnicalScorer scores TLS, response time, viewport coverage and URL
// hygiene.
func NewTechnicalScorer() *RuleScorer {
	return NewRuleScorer(model.CategoryTechnical, []Rule{
		{
			Label:   "SSL security",
			Measure: func(s *Site) float64 { return boolValue(s.HTTPS()) },
			Bands:   []Band{Above(0, 10)},
			Format:  formatBool("served over https", "not served over https"),
		},
		{
			Label:   "Page speed (approximated from response time)",
			Measure: (*Site).AvgResponseMS,
			Bands: []Band{
				Below(FastResponseMS, 15),
				Below(AcceptableResponseMS, 10),
			},
			Format: formatMillis,
		},
		{
			Label:   "Mobile friendly",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.HasViewport }) },
			Bands: []Band{
				AtLeast(0.8, 15),
				AtLeast(0.5, 10),
			},
			Else:   5,
			Format: formatPercent,
		},
		{
			Label:   "Clean URLs",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.CleanURL }) },
			Scale:   10,
			Format:  formatPercent,
		},
	})
}
