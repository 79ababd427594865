package scoring

import (
	"time"

	"github.com/nao1215/aicompliance/internal/model"
)

// Priority action selection.
const (
	// PriorityRatio is the score/max ratio below which a category earns a
	// priority action.
	PriorityRatio = 0.7

	// MaxPriorityActions caps the number of priority actions.
	MaxPriorityActions = 5

	// MaintainAction is emitted when no category underperforms.
	MaintainAction = "Continue monitoring and maintaining current high standards"
)

// Aggregate merges category results into a ComplianceReport.
// categories may arrive in any order; the report lists them in
// model.CategoryOrder, followed by any unknown keys.
func Aggregate(website string, pagesAnalyzed int, categories []model.CategoryResult, now time.Time) *model.ComplianceReport {
	ordered := orderCategories(categories)

	total := 0.0
	for _, c := range ordered {
		total += c.Score
	}
	maxScore := model.MaxScore()
	percentage := 0.0
	if maxScore > 0 {
		percentage = clamp(total/float64(maxScore)*100, 0, 100)
	}
	// Reports show one decimal; the tier follows the shown value.
	tier := model.TierFor(model.Round1(percentage))

	return &model.ComplianceReport{
		Website:         website,
		PagesAnalyzed:   pagesAnalyzed,
		Categories:      ordered,
		TotalScore:      total,
		MaxScore:        maxScore,
		Percentage:      percentage,
		Tier:            tier,
		Recommendation:  tier.Recommendation(),
		PriorityActions: PriorityActions(ordered),
		GeneratedAt:     now,
	}
}

// PriorityActions returns the improvement actions of every category whose
// ratio is below PriorityRatio, in category order and at most
// MaxPriorityActions. When none qualifies the single MaintainAction is
// returned.
func PriorityActions(categories []model.CategoryResult) []string {
	var actions []string
	for _, c := range categories {
		if len(actions) >= MaxPriorityActions {
			break
		}
		if c.Ratio() >= PriorityRatio {
			continue
		}
		if action := c.Key.Info().Action; action != "" {
			actions = append(actions, action)
		}
	}
	if len(actions) == 0 {
		return []string{MaintainAction}
	}
	return actions
}

func orderCategories(categories []model.CategoryResult) []model.CategoryResult {
	byKey := make(map[model.CategoryKey]model.CategoryResult, len(categories))
	for _, c := range categories {
		byKey[c.Key] = c
	}

	ordered := make([]model.CategoryResult, 0, len(categories))
	used := make(map[model.CategoryKey]bool, len(categories))
	for _, key := range model.CategoryOrder {
		if c, ok := byKey[key]; ok {
			ordered = append(ordered, c)
			used[key] = true
		}
	}
	for _, c := range categories {
		if !used[c.Key] {
			ordered = append(ordered, c)
			used[c.Key] = true
		}
	}
	return ordered
}
