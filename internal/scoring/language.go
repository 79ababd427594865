package scoring

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// maxLanguageSample limits how much text is handed to the detector.
const maxLanguageSample = 2000

// LanguageDetector names the language of a text as an ISO 639-1 code.
// An empty string means unknown.
type LanguageDetector interface {
	Detect(text string) string
}

// linguaDetector detects languages with lingua. The models are loaded on
// first use.
type linguaDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLinguaDetector returns a LanguageDetector for the most common web
// languages.
func NewLinguaDetector() LanguageDetector {
	return &linguaDetector{}
}

func (d *linguaDetector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if len(text) > maxLanguageSample {
		text = strings.ToValidUTF8(text[:maxLanguageSample], "")
	}

	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English, lingua.French, lingua.German, lingua.Spanish,
				lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Russian,
				lingua.Japanese, lingua.Chinese, lingua.Korean,
			).
			WithLowAccuracyMode().
			Build()
	})

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
