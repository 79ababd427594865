package report

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/nao1215/aicompliance/internal/model"
)

// categoryTitle returns the display name of a category.
func categoryTitle(c model.CategoryResult) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Key.Info().Name
}

// tierName returns the tier name in title case, e.g. "Excellent".
func tierName(t model.Tier) string {
	// A Caser keeps state, so it is not shared between writers.
	return cases.Title(language.English).String(t.String())
}

// languageName returns the English name of an ISO 639 language code.
// An empty code yields "-". Unknown codes are returned in canonical form.
func languageName(code string) string {
	if code == "" {
		return "-"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return tag.String()
}
