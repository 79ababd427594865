package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleReport() *ComplianceReport {
	return &ComplianceReport{
		Website:       "https://example.com",
		PagesAnalyzed: 2,
		Categories: []CategoryResult{
			{Key: CategoryContent, Name: "Content Quality", Score: 60, Max: 80, Checks: []Check{
				{Label: "content depth", Passed: true, Detail: "1200 words", Points: 25},
			}},
			{Key: CategoryTechnical, Name: "Technical Performance", Score: 47.5, Max: 50},
			{Key: CategoryMobile, Name: "Mobile & AI Optimization", Score: 15, Max: 15},
		},
		TotalScore:      122.54,
		MaxScore:        230,
		Percentage:      53.278,
		Tier:            TierModerate,
		Recommendation:  TierModerate.Recommendation(),
		PriorityActions: []string{CategoryContent.Info().Action},
		GeneratedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestComplianceReportMarshalJSON tests the persisted report format.
func TestComplianceReportMarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleReport())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	t.Run("contains persisted keys", func(t *testing.T) {
		t.Parallel()

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		for _, key := range []string{
			"website", "timestamp", "overall_score", "max_score", "percentage",
			"compliance_level", "category_scores", "priority_actions", "pages_analyzed",
		} {
			if _, ok := raw[key]; !ok {
				t.Errorf("missing key %q", key)
			}
		}
		if raw["compliance_level"] != "MODERATE" {
			t.Errorf("unexpected compliance_level %v", raw["compliance_level"])
		}
	})

	t.Run("rounds scores to one decimal", func(t *testing.T) {
		t.Parallel()

		if !strings.Contains(string(data), `"overall_score":122.5`) {
			t.Errorf("expected rounded overall_score in %s", data)
		}
		if !strings.Contains(string(data), `"percentage":53.3`) {
			t.Errorf("expected rounded percentage in %s", data)
		}
	})

	t.Run("keeps category order", func(t *testing.T) {
		t.Parallel()

		s := string(data)
		content := strings.Index(s, `"content_quality":{`)
		technical := strings.Index(s, `"technical_performance":{`)
		mobile := strings.Index(s, `"mobile_ai_optimization":{`)
		if content < 0 || technical < 0 || mobile < 0 {
			t.Fatalf("missing category in %s", s)
		}
		if content >= technical || technical >= mobile {
			t.Errorf("categories out of order: %d %d %d", content, technical, mobile)
		}
	})
}

// TestComplianceReportUnmarshalJSON tests decoding a persisted report.
func TestComplianceReportUnmarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleReport())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got ComplianceReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Tier != TierModerate {
		t.Errorf("expected MODERATE, got %v", got.Tier)
	}
	if len(got.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got.Categories))
	}
	if got.Categories[0].Key != CategoryContent || got.Categories[2].Key != CategoryMobile {
		t.Errorf("unexpected category order: %+v", got.Categories)
	}
	if got.Categories[0].Name != "Content Quality" {
		t.Errorf("expected name restored from key, got %q", got.Categories[0].Name)
	}
	if len(got.Categories[0].Checks) != 1 {
		t.Errorf("expected checks restored, got %d", len(got.Categories[0].Checks))
	}
}

// TestMaxScore tests the constant maximum.
func TestMaxScore(t *testing.T) {
	t.Parallel()

	if got := MaxScore(); got != 230 {
		t.Errorf("expected 230, got %d", got)
	}
}

// TestCategoryResultRatio tests the zero-max guard.
func TestCategoryResultRatio(t *testing.T) {
	t.Parallel()

	if got := (CategoryResult{Score: 5, Max: 0}).Ratio(); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := (CategoryResult{Score: 5, Max: 10}).Percentage(); got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
}
