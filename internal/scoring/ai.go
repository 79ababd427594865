package scoring

import "github.com/nao1215/aicompliance/internal/model"

// NewAIReadinessScorer scores conversational tone, question and answer
// content and heading context.
func NewAIReadinessScorer() *RuleScorer {
	return NewRuleScorer(model.CategoryAI, []Rule{
		{
			Label:   "Conversational content",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.IsConversational }) },
			Bands: []Band{
				AtLeast(0.5, 10),
				AtLeast(0.2, 7),
			},
			Format: formatPercent,
		},
		{
			Label:   "Question answering",
			Measure: func(s *Site) float64 { return s.Fraction(func(p *PageSignals) bool { return p.HasQuestions }) },
			Bands: []Band{
				AtLeast(0.3, 10),
				Above(0, 7),
			},
			Format: formatPercent,
		},
		{
			Label: "Contextual clarity",
			Measure: func(s *Site) float64 {
				return s.Fraction(func(p *PageSignals) bool { return p.TopHeadings >= MinContextHeadings })
			},
			Bands: []Band{
				AtLeast(0.7, 10),
				AtLeast(0.4, 7),
			},
			Format: formatPercent,
		},
	})
}
