// Package scoring turns crawled pages into a weighted compliance score.
//
// Every page is reduced once to PageSignals (word counts, headings,
// viewport, structured data, author and date markers and so on). The six
// category scorers then evaluate a declarative rule table against the
// signals of the whole page set:
//
//	content_quality         80
//	technical_performance   50
//	semantic_structure      35
//	ai_readiness            30
//	eeat_factors            20
//	mobile_ai_optimization  15
//
// Aggregate sums the categories, derives the percentage and tier and
// picks the priority actions.
//
// Page speed and Core Web Vitals are approximations based on the request
// latency measured by the crawler. No rendering takes place.
package scoring
