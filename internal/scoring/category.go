package scoring

import (
	"context"

	"github.com/nao1215/aicompliance/internal/model"
)

// CategoryScorer scores one category from the whole page set.
// Implementations are pure and safe for concurrent use.
type CategoryScorer interface {
	// Key returns the category the scorer produces.
	Key() model.CategoryKey

	// Score evaluates the category.
	Score(ctx context.Context, site *Site) (model.CategoryResult, error)
}

// RuleScorer is a CategoryScorer backed by a rule table.
type RuleScorer struct {
	key   model.CategoryKey
	rules []Rule
}

// NewRuleScorer creates a RuleScorer for key.
func NewRuleScorer(key model.CategoryKey, rules []Rule) *RuleScorer {
	return &RuleScorer{key: key, rules: rules}
}

// Key returns the category key.
func (s *RuleScorer) Key() model.CategoryKey {
	return s.key
}

// Rules returns the rule table.
func (s *RuleScorer) Rules() []Rule {
	return s.rules
}

// Score evaluates every rule. With no pages every check fails with the
// NoPagesDetail detail and the score is 0.
func (s *RuleScorer) Score(ctx context.Context, site *Site) (model.CategoryResult, error) {
	info := s.key.Info()
	result := model.CategoryResult{
		Key:    s.key,
		Name:   info.Name,
		Max:    info.Max,
		Checks: make([]model.Check, 0, len(s.rules)),
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	for _, rule := range s.rules {
		if site == nil || site.Empty() {
			result.Checks = append(result.Checks, model.Check{Label: rule.Label, Detail: NoPagesDetail})
			continue
		}
		check := rule.Evaluate(site)
		result.Checks = append(result.Checks, check)
		result.Score += check.Points
	}
	result.Score = clamp(result.Score, 0, result.Max)
	return result, nil
}
