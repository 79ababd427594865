package scoring

import "github.com/nao1215/aicompliance/internal/model"

// NewMobileScorer scores the responsive viewport of the seed page and the
// Core Web Vitals approximation.
func NewMobileScorer() *RuleScorer {
	return NewRuleScorer(model.CategoryMobile, []Rule{
		{
			Label: "Responsive design",
			Measure: func(s *Site) float64 {
				seed := s.Seed()
				return boolValue(seed != nil && seed.Responsive())
			},
			Bands:  []Band{Above(0, 10)},
			Format: formatBool("width=device-width viewport", "no responsive viewport"),
		},
		{
			Label:   "Core Web Vitals (approximated from response time)",
			Measure: (*Site).AvgResponseMS,
			Bands:   []Band{Below(AcceptableResponseMS, 5)},
			Format:  formatMillis,
		},
	})
}
