package scoring

import (
	"sort"
	"unicode/utf8"
)

// MinKeywordRunes is the shortest token considered a keyword candidate.
const MinKeywordRunes = 4

// stopwords are frequent English words that never count as keywords.
var stopwords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "against": true,
	"also": true, "been": true, "before": true, "being": true, "below": true,
	"between": true, "both": true, "but": true, "can't": true, "cannot": true,
	"could": true, "didn't": true, "does": true, "doesn't": true, "doing": true,
	"don't": true, "down": true, "during": true, "each": true, "even": true,
	"every": true, "from": true, "further": true, "have": true, "haven't": true,
	"having": true, "he'd": true, "he'll": true, "here": true, "here's": true,
	"hers": true, "herself": true, "himself": true, "how's": true, "i'll": true,
	"i've": true, "into": true, "isn't": true, "it's": true, "itself": true,
	"just": true, "let's": true, "like": true, "make": true, "many": true,
	"more": true, "most": true, "much": true, "must": true, "myself": true,
	"once": true, "only": true, "other": true, "ought": true, "ours": true,
	"ourselves": true, "over": true, "same": true, "shall": true, "she'd": true,
	"she'll": true, "should": true, "some": true, "such": true, "than": true,
	"that": true, "that's": true, "their": true, "theirs": true, "them": true,
	"themselves": true, "then": true, "there": true, "there's": true, "these": true,
	"they": true, "they'd": true, "they'll": true, "they're": true, "they've": true,
	"this": true, "those": true, "through": true, "under": true, "until": true,
	"upon": true, "very": true, "want": true, "wasn't": true, "we'd": true,
	"we'll": true, "we're": true, "we've": true, "were": true, "weren't": true,
	"what": true, "what's": true, "when": true, "when's": true, "where": true,
	"where's": true, "which": true, "while": true, "whom": true, "who's": true,
	"why's": true, "will": true, "with": true, "won't": true, "would": true,
	"wouldn't": true, "your": true, "you'd": true, "you'll": true, "you're": true,
	"you've": true, "yours": true, "yourself": true, "yourselves": true,
}

// KeywordStat is the most frequent keyword of a page set.
type KeywordStat struct {
	Term       string
	Count      int
	TotalWords int
}

// Density returns Count/TotalWords, or -1 when there are no words.
func (k KeywordStat) Density() float64 {
	if k.TotalWords == 0 {
		return -1
	}
	return float64(k.Count) / float64(k.TotalWords)
}

// TopKeyword returns the most frequent keyword candidate across pages.
// TotalWords counts every word, stopwords included. Ties resolve to the
// alphabetically first term.
func TopKeyword(pages []*PageSignals) KeywordStat {
	counts := make(map[string]int)
	total := 0
	for _, p := range pages {
		total += len(p.Words)
		for _, w := range p.Words {
			if IsKeywordCandidate(w) {
				counts[w]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	stat := KeywordStat{TotalWords: total}
	if len(terms) > 0 {
		stat.Term = terms[0]
		stat.Count = counts[terms[0]]
	}
	return stat
}

// IsKeywordCandidate reports whether word may be a keyword.
func IsKeywordCandidate(word string) bool {
	return utf8.RuneCountInString(word) >= MinKeywordRunes && !stopwords[word]
}
