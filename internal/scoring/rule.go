package scoring

import (
	"fmt"

	"github.com/nao1215/aicompliance/internal/model"
)

// NoPagesDetail is the check detail used when nothing was crawled.
const NoPagesDetail = "no pages analyzed"

// Band awards Points when its condition holds for the measured value.
type Band struct {
	Name   string
	Match  func(v float64) bool
	Points float64
}

// AtLeast matches v >= threshold.
func AtLeast(threshold, points float64) Band {
	return Band{
		Name:   fmt.Sprintf(">= %g", threshold),
		Match:  func(v float64) bool { return v >= threshold },
		Points: points,
	}
}

// Above matches v > threshold.
func Above(threshold, points float64) Band {
	return Band{
		Name:   fmt.Sprintf("> %g", threshold),
		Match:  func(v float64) bool { return v > threshold },
		Points: points,
	}
}

// Below matches v < threshold.
func Below(threshold, points float64) Band {
	return Band{
		Name:   fmt.Sprintf("< %g", threshold),
		Match:  func(v float64) bool { return v < threshold },
		Points: points,
	}
}

// Within matches lo <= v <= hi.
func Within(lo, hi, points float64) Band {
	return Band{
		Name:   fmt.Sprintf("%g..%g", lo, hi),
		Match:  func(v float64) bool { return v >= lo && v <= hi },
		Points: points,
	}
}

// Rule is one declarative check. The first matching band awards its
// points; if none matches, Else is awarded. A rule with Scale > 0 awards
// Scale times the measured value instead, clamped to [0, Scale].
type Rule struct {
	Label   string
	Measure func(site *Site) float64
	Bands   []Band
	Else    float64
	Scale   float64
	Format  func(v float64) string
}

// Evaluate applies r to site.
func (r Rule) Evaluate(site *Site) model.Check {
	v := r.Measure(site)
	points := r.Else
	if r.Scale > 0 {
		points = clamp(r.Scale*v, 0, r.Scale)
	} else {
		for _, b := range r.Bands {
			if b.Match(v) {
				points = b.Points
				break
			}
		}
	}

	detail := fmt.Sprintf("%.2f", v)
	if r.Format != nil {
		detail = r.Format(v)
	}
	return model.Check{
		Label:  r.Label,
		Passed: points > 0,
		Detail: detail,
		Points: points,
	}
}

// MaxPoints returns the highest score the rule can award.
func (r Rule) MaxPoints() float64 {
	if r.Scale > 0 {
		return r.Scale
	}
	m := r.Else
	for _, b := range r.Bands {
		if b.Points > m {
			m = b.Points
		}
	}
	return m
}

// FractionMatching returns the share of items for which pred holds.
// An empty slice yields 0.
func FractionMatching[T any](items []T, pred func(T) bool) float64 {
	if len(items) == 0 {
		return 0
	}
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return float64(n) / float64(len(items))
}

// Average returns the mean of f over items, or 0 for an empty slice.
func Average[T any](items []T, f func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += f(item)
	}
	return total / float64(len(items))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%% of pages", v*100)
}

func formatMillis(v float64) string {
	return fmt.Sprintf("%.0f ms average", v)
}

func formatCount(unit string) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.1f %s per page", v, unit)
	}
}

func formatBool(yes, no string) func(float64) string {
	return func(v float64) string {
		if v > 0 {
			return yes
		}
		return no
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
