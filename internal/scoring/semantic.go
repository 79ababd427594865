package scoring

import "github.com/nao1215/aicompliance/internal/model"

// NewSemanticScorer scores structured data, HTML5 sectioning and meta
// tags.
func NewSemanticScorer() *RuleScorer {
	return NewRuleScorer(model.CategorySemantic, []Rule{
		{
			Label:   "Structured data",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.HasStructuredData }) },
			Bands: []Band{
				AtLeast(0.5, 15),
				Above(0, 10),
			},
			Format: formatPercent,
		},
		{
			Label: "Semantic HTML",
			Measure: func(s *Site) float64 {
				return s.Fraction(func(p *PageSignals) bool { return p.SemanticElements >= MinSemanticElements })
			},
			Bands: []Band{
				AtLeast(0.7, 10),
				AtLeast(0.3, 7),
			},
			Else:   3,
			Format: formatPercent,
		},
		{
			Label:   "Meta optimization",
			Measure: func(s *Site) float64 { return s.Fraction((*PageSignals).MetaOptimized) },
			Bands: []Band{
				AtLeast(0.8, 10),
				AtLeast(0.5, 7),
			},
			Else:   3,
			Format: formatPercent,
		},
	})
}
