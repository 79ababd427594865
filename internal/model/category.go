package model

// CategoryKey identifies a scoring category. The values double as the
// keys of category_scores in the persisted report.
type CategoryKey string

// Scoring categories.
const (
	CategoryContent   CategoryKey = "content_quality"
	CategoryTechnical CategoryKey = "technical_performance"
	CategorySemantic  CategoryKey = "semantic_structure"
	CategoryAI        CategoryKey = "ai_readiness"
	CategoryEEAT      CategoryKey = "eeat_factors"
	CategoryMobile    CategoryKey = "mobile_ai_optimization"
)

// CategoryOrder is the analysis order. Reports list categories in this
// order and priority actions are picked in this order.
var CategoryOrder = []CategoryKey{
	CategoryContent,
	CategoryTechnical,
	CategorySemantic,
	CategoryAI,
	CategoryEEAT,
	CategoryMobile,
}

// CategoryInfo describes a category independently of any run.
type CategoryInfo struct {
	// Name is the human readable category name.
	Name string

	// Max is the maximum attainable score.
	Max float64

	// Action is the recommendation emitted when the category underperforms.
	Action string
}

// categoryInfoMapping is the single source of category names, maxima and
// improvement actions.
var categoryInfoMapping = map[CategoryKey]CategoryInfo{
	CategoryContent: {
		Name:   "Content Quality",
		Max:    80,
		Action: "Improve content depth and semantic richness with longer, well-structured articles",
	},
	CategoryTechnical: {
		Name:   "Technical Performance",
		Max:    50,
		Action: "Optimize page speed, implement SSL, and ensure mobile-friendly design",
	},
	CategorySemantic: {
		Name:   "Semantic Structure",
		Max:    35,
		Action: "Add structured data markup and improve semantic HTML structure",
	},
	CategoryAI: {
		Name:   "AI Readiness",
		Max:    30,
		Action: "Create more conversational, question-answering content for AI engines",
	},
	CategoryEEAT: {
		Name:   "E-E-A-T",
		Max:    20,
		Action: "Add author information, credibility signals, and update content dates",
	},
	CategoryMobile: {
		Name:   "Mobile & AI Optimization",
		Max:    15,
		Action: "Improve mobile responsiveness and Core Web Vitals performance",
	},
}

// Info returns the metadata of the category.
// Unknown keys yield a zero CategoryInfo with the key as name.
func (k CategoryKey) Info() CategoryInfo {
	if info, ok := categoryInfoMapping[k]; ok {
		return info
	}
	return CategoryInfo{Name: string(k)}
}

// MaxScore is the sum of all category maxima.
func MaxScore() int {
	total := 0.0
	for _, key := range CategoryOrder {
		total += key.Info().Max
	}
	return int(total)
}

// Check is one independently evaluated rule inside a category.
type Check struct {
	// Label names the rule.
	Label string `json:"label"`

	// Passed is true when the rule awarded any points.
	Passed bool `json:"passed"`

	// Detail is the measured value in human readable form.
	Detail string `json:"detail"`

	// Points is the contribution of the rule to the category score.
	Points float64 `json:"points"`
}

// CategoryResult is the scored outcome of one category.
// Score is the sum of the check points and never exceeds Max.
type CategoryResult struct {
	Key    CategoryKey `json:"key"`
	Name   string      `json:"name"`
	Score  float64     `json:"score"`
	Max    float64     `json:"max"`
	Checks []Check     `json:"checks"`
}

// Ratio returns Score/Max, or 0 for a zero maximum.
func (c CategoryResult) Ratio() float64 {
	if c.Max <= 0 {
		return 0
	}
	return c.Score / c.Max
}

// Percentage returns Ratio scaled to 0-100.
func (c CategoryResult) Percentage() float64 {
	return c.Ratio() * 100
}
