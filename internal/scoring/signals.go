package scoring

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/nao1215/aicompliance/internal/model"
)

// Page level thresholds.
const (
	// MinSemanticElements is the number of HTML5 sectioning elements a
	// page needs to count as semantically structured.
	MinSemanticElements = 3

	// MinContextHeadings is the number of h1-h3 headings a page needs to
	// count as contextually clear.
	MinContextHeadings = 3

	TitleMinRunes       = 10
	TitleMaxRunes       = 70
	DescriptionMinRunes = 50
	DescriptionMaxRunes = 160
)

var (
	questionPattern = regexp.MustCompile(`\b(what|how|why|when|where|who)\b[^?]*\?`)
	authorClass     = regexp.MustCompile(`(?i)author|byline|writer`)
	dateClass       = regexp.MustCompile(`(?i)date|time|published`)

	conversationalMarkers = []string{"you can", "let's", "let’s", "here's how", "here’s how", "follow these steps", "you'll find", "you’ll find"}
	trustPhrases          = []string{"about us", "contact", "privacy policy", "terms", "certification", "accredited"}
	semanticElements      = "article, section, nav, header, footer, aside, main"
	unfriendlyExtensions  = []string{".php", ".html", ".htm", ".jsp", ".asp", ".aspx", ".cgi", ".pl", ".py", ".rb", ".do", ".action"}

	// skippedTextElements never contribute visible text.
	skippedTextElements = map[string]bool{"script": true, "style": true, "noscript": true, "template": true, "svg": true}
)

// PageSignals are the facts extracted from one page. They are computed
// once and shared by every category scorer.
type PageSignals struct {
	URL       string
	ElapsedMS float64

	Title       string
	Description string

	// Words are the lowercase tokens of the visible text.
	Words []string

	Headings    int
	TopHeadings int
	Paragraphs  int

	HasViewport     bool
	ViewportContent string

	HasStructuredData bool
	SemanticElements  int

	HasQuestions      bool
	IsConversational  bool
	HasTrustSignals   bool
	HasAuthor         bool
	HasFreshnessDates bool

	Byline    string
	Published *time.Time

	CleanURL bool
}

// WordCount returns the number of visible words.
func (p *PageSignals) WordCount() int {
	return len(p.Words)
}

// MetaOptimized reports whether title and description are within the
// recommended lengths.
func (p *PageSignals) MetaOptimized() bool {
	t := utf8.RuneCountInString(p.Title)
	d := utf8.RuneCountInString(p.Description)
	return t >= TitleMinRunes && t <= TitleMaxRunes && d >= DescriptionMinRunes && d <= DescriptionMaxRunes
}

// Responsive reports whether the viewport adapts to the device width.
func (p *PageSignals) Responsive() bool {
	return strings.Contains(strings.ToLower(p.ViewportContent), "width=device-width")
}

// ExtractSignals computes the PageSignals of page. It never fails; a page
// without a document yields signals for an empty page.
func ExtractSignals(page *model.PageRecord) *PageSignals {
	s := &PageSignals{
		URL:       page.URL,
		ElapsedMS: page.ElapsedMS,
		CleanURL:  IsCleanURL(page.URL),
	}
	doc := page.Doc
	if doc == nil {
		return s
	}

	s.Title = strings.TrimSpace(doc.Find("title").First().Text())
	s.Description = strings.TrimSpace(metaContent(doc, "name", "description"))

	text := VisibleText(doc.Selection)
	lower := strings.ToLower(text)
	s.Words = Tokenize(lower)

	s.Headings = doc.Find("h1, h2, h3, h4, h5, h6").Length()
	s.TopHeadings = doc.Find("h1, h2, h3").Length()
	s.Paragraphs = doc.Find("p").Length()

	if viewport := findMeta(doc, "name", "viewport"); viewport != nil {
		s.HasViewport = true
		s.ViewportContent, _ = viewport.Attr("content")
	}

	s.HasStructuredData = doc.Find(`script[type="application/ld+json"], [itemtype], [typeof], [vocab]`).Length() > 0
	s.SemanticElements = doc.Find(semanticElements).Length()

	s.HasQuestions = questionPattern.MatchString(lower)
	s.IsConversational = containsAny(lower, conversationalMarkers)
	s.HasTrustSignals = containsAny(lower, trustPhrases)

	s.HasAuthor = hasClassMatching(doc, authorClass) ||
		metaContent(doc, "name", "author") != "" ||
		doc.Find(`[rel~="author"]`).Length() > 0
	s.HasFreshnessDates = doc.Find("time").Length() > 0 ||
		hasClassMatching(doc, dateClass) ||
		metaContent(doc, "property", "article:published_time") != ""

	s.Byline, s.Published = articleMetadata(page)
	if s.Byline != "" {
		s.HasAuthor = true
	}
	if s.Published != nil {
		s.HasFreshnessDates = true
	}
	return s
}

// articleMetadata reads the byline and publication time with readability.
// Pages readability cannot handle yield empty values.
func articleMetadata(page *model.PageRecord) (string, *time.Time) {
	if page.HTML == "" {
		return "", nil
	}
	pageURL, err := url.Parse(page.BaseURL())
	if err != nil {
		return "", nil
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(page.HTML), pageURL)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(article.Byline), article.PublishedTime
}

// VisibleText returns the text of sel without script, style and similar
// elements. Block boundaries are separated by spaces.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if skippedTextElements[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// Tokenize splits text into words. A word is a run of letters, digits,
// apostrophes and inner hyphens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’' && r != '-'
	})
}

// IsCleanURL reports whether the path of rawURL is free of query syntax
// and script file extensions.
func IsCleanURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.RawQuery != "" || u.ForceQuery || strings.ContainsAny(u.Path, "?&=") {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, ext := range unfriendlyExtensions {
		if strings.HasSuffix(p, ext) {
			return false
		}
	}
	return true
}

// findMeta returns the first meta element whose attr equals name, ignoring
// case, or nil.
func findMeta(doc *goquery.Document, attr, name string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(attr)
		if strings.EqualFold(strings.TrimSpace(v), name) {
			found = s
			return false
		}
		return true
	})
	return found
}

func metaContent(doc *goquery.Document, attr, name string) string {
	meta := findMeta(doc, attr, name)
	if meta == nil {
		return ""
	}
	content, _ := meta.Attr("content")
	return content
}

func hasClassMatching(doc *goquery.Document, pattern *regexp.Regexp) bool {
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if pattern.MatchString(class) {
			found = true
			return false
		}
		return true
	})
	return found
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
